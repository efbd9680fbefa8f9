package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zpam/classifier/pkg/config"
	"github.com/zpam/classifier/pkg/dataset"
	"github.com/zpam/classifier/pkg/profiler"
)

var (
	benchmarkInput   string
	benchmarkDataset string
	benchmarkRuns    int
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Time training and prediction",
	Long: `Repeatedly train and score the configured models on a fixed split and report
per-phase timing percentiles. Models are timed concurrently up to the configured
evaluation concurrency.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if benchmarkRuns < 1 {
			return fmt.Errorf("runs must be greater than 0")
		}

		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		ds, err := loadDataset(ctx, cfg, benchmarkInput, benchmarkDataset)
		if err != nil {
			return err
		}
		train, test, err := ds.Split(cfg.Dataset.TestRatio, cfg.Dataset.Seed)
		if err != nil {
			return err
		}

		fmt.Printf("🚀 Classifier Benchmark\n")
		fmt.Printf("📁 Dataset: %s (%d rows, %d features)\n", ds.Name, ds.Rows(), ds.Features())
		fmt.Printf("🔄 Runs: %d\n", benchmarkRuns)
		fmt.Printf("⚡ Concurrency: %d\n\n", cfg.Evaluation.Concurrency)

		p := profiler.NewProfiler()
		for run := 0; run < benchmarkRuns; run++ {
			if err := benchmarkRun(ctx, cfg, logger, p, train, test); err != nil {
				return err
			}
			logger.Debugf("benchmark run %d complete", run+1)
		}

		p.PrintReport(os.Stdout)
		return nil
	},
}

// benchmarkRun trains and scores every model once, recording each phase
func benchmarkRun(ctx context.Context, cfg *config.Config, logger *Logger, p *profiler.Profiler, train, test *dataset.Dataset) error {
	enc := newEncoder(cfg)

	var nb bayesModel
	err := p.Time("bayes/train", func() error {
		var err error
		nb, err = trainBayes(cfg, enc, train.Inputs, train.Outputs)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to train naive bayes: %w", err)
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Evaluation.Concurrency)

	g.Go(func() error {
		return p.Time("bayes/score", func() error {
			for _, row := range test.Inputs {
				timer := p.Start("bayes/predict")
				if _, err := nb.Predict(row); err != nil {
					return err
				}
				timer.Stop()
			}
			return nil
		})
	})

	if cfg.KNN.Enabled {
		var neighbours *knnModel
		err := p.Time("knn/train", func() error {
			var err error
			neighbours, err = trainKNN(cfg, enc, train.Inputs, train.Outputs)
			return err
		})
		if err != nil {
			logger.Warnf("skipping knn: %v", err)
		} else {
			g.Go(func() error {
				return p.Time("knn/score", func() error {
					for _, row := range test.Inputs {
						timer := p.Start("knn/predict")
						if _, err := neighbours.Predict(row); err != nil {
							return err
						}
						timer.Stop()
					}
					return nil
				})
			})
		}
	}

	return g.Wait()
}

func init() {
	benchmarkCmd.Flags().StringVarP(&benchmarkInput, "input", "i", "", "CSV file to benchmark on")
	benchmarkCmd.Flags().StringVarP(&benchmarkDataset, "dataset", "d", "", "Stored dataset to benchmark on")
	benchmarkCmd.Flags().IntVarP(&benchmarkRuns, "runs", "r", 5, "Number of benchmark runs")
}
