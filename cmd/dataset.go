package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zpam/classifier/pkg/config"
	"github.com/zpam/classifier/pkg/dataset"
	"github.com/zpam/classifier/pkg/store"
)

var (
	importName   string
	exportOutput string
	listRuns     int
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Manage stored datasets",
	Long:  `Import CSV files into the configured store, export them back and list evaluation history`,
}

var datasetImportCmd = &cobra.Command{
	Use:   "import [csv-file]",
	Short: "Import a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, cfg *config.Config, st store.Store) error {
			ds, err := dataset.LoadCSV(args[0], cfg.CSVOptions())
			if err != nil {
				return err
			}
			ds.Name = importName
			if ds.Name == "" {
				ds.Name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}

			if err := st.SaveDataset(ctx, ds); err != nil {
				return err
			}
			fmt.Printf("✅ Imported %s: %d rows, %d features, labels %v\n", ds.Name, ds.Rows(), ds.Features(), ds.Labels())
			return nil
		})
	},
}

var datasetExportCmd = &cobra.Command{
	Use:   "export [name]",
	Short: "Export a stored dataset as CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, cfg *config.Config, st store.Store) error {
			ds, err := st.LoadDataset(ctx, args[0])
			if err != nil {
				return err
			}

			if exportOutput == "" {
				return ds.WriteCSV(os.Stdout)
			}

			file, err := os.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("failed to create %s: %v", exportOutput, err)
			}
			defer file.Close()

			if err := ds.WriteCSV(file); err != nil {
				return err
			}
			fmt.Printf("✅ Exported %s (%d rows) to %s\n", ds.Name, ds.Rows(), exportOutput)
			return nil
		})
	},
}

var datasetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored datasets and recent runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, cfg *config.Config, st store.Store) error {
			names, err := st.ListDatasets(ctx)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Println("No datasets stored")
				return nil
			}

			fmt.Printf("📚 Stored datasets\n")
			fmt.Printf("═══════════════════════════════════════\n")
			for _, name := range names {
				fmt.Printf("📁 %s\n", name)

				runs, err := st.Runs(ctx, name, listRuns)
				if err != nil {
					return err
				}
				for _, run := range runs {
					fmt.Printf("   %s  %-16s accuracy %6.2f%%  f1 %.3f  (%d/%d rows)\n",
						run.CreatedAt.Format("2006-01-02 15:04"), run.Model,
						run.Accuracy*100, run.F1, run.TrainRows, run.TestRows)
				}
			}
			return nil
		})
	},
}

var datasetDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a stored dataset and its runs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, cfg *config.Config, st store.Store) error {
			if err := st.DeleteDataset(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("🗑️  Deleted %s\n", args[0])
			return nil
		})
	},
}

// withStore opens the configured store for the duration of fn
func withStore(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config, st store.Store) error) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Close()

	if cfg.Store.Backend != "redis" {
		logger.Warnf("store backend is %q; data is lost when the process exits", cfg.Store.Backend)
	}

	st, err := store.Open(&cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open store: %v", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, cfg, st)
}

func init() {
	datasetCmd.AddCommand(datasetImportCmd)
	datasetCmd.AddCommand(datasetExportCmd)
	datasetCmd.AddCommand(datasetListCmd)
	datasetCmd.AddCommand(datasetDeleteCmd)

	datasetImportCmd.Flags().StringVarP(&importName, "name", "n", "", "Dataset name (default file name)")
	datasetExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output CSV file (default stdout)")
	datasetListCmd.Flags().IntVar(&listRuns, "runs", 5, "Recent runs shown per dataset")
}
