package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/resonance/internal/adapters/csvfile"
	"github.com/ewilliams-labs/resonance/internal/adapters/sqlite"
	"github.com/ewilliams-labs/resonance/internal/core/services"
)

func newImportCmd(st *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a CSV catalog into SQLite",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := st.cfg
			dataset, _ := cmd.Flags().GetString("dataset")
			dbPath, _ := cmd.Flags().GetString("sqlite-path")
			if dataset == "" {
				dataset = cfg.Dataset.Path
			}
			if dbPath == "" {
				dbPath = cfg.Storage.SQLitePath
			}

			db, err := sqlite.NewAdapter(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := services.NewOrchestrator(nil, db).
				ImportDataset(cmd.Context(), csvfile.NewStore(dataset), dataset, cfg.Recommender.Features)
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				last, err := db.LastImport(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"import_id": last.ID,
					"source":    last.Source,
					"tracks":    n,
					"database":  dbPath,
				})
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tracks from %s into %s\n", n, dataset, dbPath)
			return err
		},
	}

	cmd.Flags().String("dataset", "", "CSV catalog to import (default from config)")
	cmd.Flags().String("sqlite-path", "", "SQLite database file (default from config)")

	return cmd
}
