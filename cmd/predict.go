package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	predictInput   string
	predictDataset string
)

var predictCmd = &cobra.Command{
	Use:   "predict [feature...]",
	Short: "Classify one row",
	Long: `Train on the whole dataset and print the probability of every label for the
given feature values. With text features enabled the arguments are read as one document.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		ds, err := loadDataset(ctx, cfg, predictInput, predictDataset)
		if err != nil {
			return err
		}

		row := args
		if cfg.Dataset.Text.Enabled {
			row = []string{strings.Join(args, " ")}
		}

		enc := newEncoder(cfg)
		nb, err := trainBayes(cfg, enc, ds.Inputs, ds.Outputs)
		if err != nil {
			return fmt.Errorf("failed to train naive bayes: %w", err)
		}
		logger.Debugf("trained on %d rows of %s", ds.Rows(), ds.Name)

		dist, err := nb.Predict(row)
		if err != nil {
			return err
		}

		buckets := nb.Buckets()
		best := buckets[0]
		for _, bucket := range buckets[1:] {
			if dist[bucket] > dist[best] {
				best = bucket
			}
		}

		fmt.Printf("🔮 Prediction for %v\n", row)
		fmt.Printf("───────────────────────────────────────\n")
		for _, bucket := range buckets {
			marker := "  "
			if bucket == best {
				marker = "👉"
			}
			fmt.Printf("%s %-16s %6.2f%%\n", marker, bucket, dist[bucket]*100)
		}

		if cfg.KNN.Enabled {
			neighbours, err := trainKNN(cfg, enc, ds.Inputs, ds.Outputs)
			if err != nil {
				logger.Warnf("skipping knn: %v", err)
				return nil
			}
			label, err := neighbours.Predict(row)
			if err != nil {
				return err
			}
			fmt.Printf("\n📍 %s (%s): %s\n", neighbours.Name(), cfg.KNN.Distance, label)
		}
		return nil
	},
}

func init() {
	predictCmd.Flags().StringVarP(&predictInput, "input", "i", "", "CSV file to train on")
	predictCmd.Flags().StringVarP(&predictDataset, "dataset", "d", "", "Stored dataset to train on")
}
