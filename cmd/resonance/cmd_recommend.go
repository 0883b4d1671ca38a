package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/resonance/internal/adapters/csvfile"
	"github.com/ewilliams-labs/resonance/internal/app"
	"github.com/ewilliams-labs/resonance/internal/config"
	"github.com/ewilliams-labs/resonance/internal/core/domain"
)

func newRecommendCmd(st *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend similar tracks",
		Long: `Recommend the tracks most similar to one or more seed tracks.

Seeds are chosen by --track-id (repeatable), --title/--artist (fuzzy match),
or --random n. Without any of these the first catalog row is the seed.`,
		Example: `  resonance recommend --dataset data/tracks.csv --track-id 4iV5W9uYEdYUVa79Axb7Rh
  resonance recommend --title "Tum Hi Ho" --artist "Arijit Singh" --top-k 10
  resonance recommend --random 3 --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *st.cfg
			if err := applyRecommendFlags(cmd, &cfg); err != nil {
				return err
			}

			ids, _ := cmd.Flags().GetStringSlice("track-id")
			title, _ := cmd.Flags().GetString("title")
			artist, _ := cmd.Flags().GetString("artist")
			random, _ := cmd.Flags().GetInt("random")
			format, _ := cmd.Flags().GetString("format")
			out, _ := cmd.Flags().GetString("out")

			if title == "" && artist != "" {
				return fmt.Errorf("--artist requires --title")
			}
			seedModes := 0
			for _, set := range []bool{len(ids) > 0, title != "", random > 0} {
				if set {
					seedModes++
				}
			}
			if seedModes > 1 {
				return fmt.Errorf("--track-id, --title and --random are mutually exclusive")
			}
			if !isOutputFormat(format) {
				return fmt.Errorf("unknown --format %q (want table, json or yaml)", format)
			}

			ctx := cmd.Context()
			a, err := app.New(ctx, &cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			svc := a.Recommendations
			topK := cfg.Recommender.TopK
			var (
				results []domain.SeedResult
				errs    []error
			)
			switch {
			case len(ids) > 0:
				items, err := svc.Batch(ctx, ids, topK)
				if err != nil {
					return err
				}
				for _, item := range items {
					if item.Err != nil {
						errs = append(errs, fmt.Errorf("track %q: %w", item.ID, item.Err))
						continue
					}
					results = append(results, item.Result)
				}
			case title != "":
				result, err := svc.Search(ctx, title, artist, topK)
				if err != nil {
					return err
				}
				results = append(results, result)
			case random > 0:
				results, err = svc.Random(ctx, random, topK)
				if err != nil {
					return err
				}
			default:
				result, err := svc.First(ctx, topK)
				if err != nil {
					return err
				}
				results = append(results, result)
			}

			if err := renderResults(cmd.OutOrStdout(), format, results); err != nil {
				return err
			}
			if out != "" {
				if err := csvfile.WriteRecommendations(out, results); err != nil {
					return err
				}
			}
			return errors.Join(errs...)
		},
	}

	cmd.Flags().String("dataset", "", "CSV catalog to load (implies the csv storage driver)")
	cmd.Flags().StringSlice("track-id", nil, "Seed track id (repeatable or comma separated)")
	cmd.Flags().String("title", "", "Seed track title, resolved by fuzzy match")
	cmd.Flags().String("artist", "", "Seed track artist, used with --title")
	cmd.Flags().Int("top-k", 0, "Number of recommendations per seed (default from config)")
	cmd.Flags().Int("random", 0, "Number of randomly drawn seed tracks (0 queries the first row)")
	cmd.Flags().StringSlice("features", nil, "Feature columns to compare (default from config)")
	cmd.Flags().String("format", formatTable, "Output format: table, json or yaml")
	cmd.Flags().String("out", "", "Also write recommendations to this CSV file")
	cmd.Flags().Int("workers", 0, "Concurrent workers for multi-seed queries (default from config)")
	cmd.Flags().Int64("seed", 0, "Random seed for --random (default from config)")

	return cmd
}

// applyRecommendFlags overlays explicitly set flags on cfg and re-validates.
func applyRecommendFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("dataset") {
		cfg.Dataset.Path, _ = flags.GetString("dataset")
		cfg.Storage.Driver = config.DriverCSV
	}
	if flags.Changed("features") {
		names, _ := flags.GetStringSlice("features")
		cfg.Recommender.Features = make([]string, 0, len(names))
		for _, n := range names {
			cfg.Recommender.Features = append(cfg.Recommender.Features, strings.TrimSpace(n))
		}
	}
	if flags.Changed("top-k") {
		cfg.Recommender.TopK, _ = flags.GetInt("top-k")
	}
	if flags.Changed("workers") {
		cfg.Recommender.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("seed") {
		cfg.Recommender.Seed, _ = flags.GetInt64("seed")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}
