package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/resonance/internal/adapters/csvfile"
	"github.com/ewilliams-labs/resonance/internal/adapters/sqlite"
	"github.com/ewilliams-labs/resonance/internal/app"
	"github.com/ewilliams-labs/resonance/internal/core/ports"
	"github.com/ewilliams-labs/resonance/internal/core/services"
)

func newFetchCmd(st *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch a Spotify playlist into the dataset file",
		Long: `Fetch every track of a Spotify playlist together with its audio
features and write them as a CSV catalog. With --store the catalog is also
saved into the SQLite database.

Requires SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET.`,
		Example: `  resonance fetch --playlist-id 37i9dQZF1DX0XUfTFmNBRM --market IN --output data/tracks.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := st.cfg
			playlistID, _ := cmd.Flags().GetString("playlist-id")
			market, _ := cmd.Flags().GetString("market")
			output, _ := cmd.Flags().GetString("output")
			store, _ := cmd.Flags().GetBool("store")
			if market == "" {
				market = cfg.Spotify.Market
			}
			if output == "" {
				output = cfg.Dataset.Path
			}

			ctx := cmd.Context()
			client, err := app.NewSpotifyClient(ctx, cfg)
			if err != nil {
				return err
			}

			repos := []ports.TrackRepository{csvfile.NewStore(output)}
			if store {
				db, err := sqlite.NewAdapter(cfg.Storage.SQLitePath)
				if err != nil {
					return err
				}
				defer db.Close()
				repos = append(repos, db)
			}

			playlist, err := services.NewOrchestrator(client, repos...).ImportPlaylist(ctx, playlistID, market)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Fetched %d tracks from %q into %s\n", len(playlist.Tracks), playlist.Name, output)
			if store {
				fmt.Fprintf(cmd.OutOrStdout(), "Stored catalog in %s\n", cfg.Storage.SQLitePath)
			}
			return nil
		},
	}

	cmd.Flags().String("playlist-id", "", "Spotify playlist id (required)")
	cmd.Flags().String("market", "", "Market code for track relinking (default from config)")
	cmd.Flags().String("output", "", "CSV file to write (default from config)")
	cmd.Flags().Bool("store", false, "Also save the catalog into SQLite")
	_ = cmd.MarkFlagRequired("playlist-id")

	return cmd
}
