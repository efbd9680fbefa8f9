package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zpam/classifier/pkg/config"
	"github.com/zpam/classifier/pkg/dataset"
	"github.com/zpam/classifier/pkg/metrics"
	"github.com/zpam/classifier/pkg/store"
)

var (
	evaluateInput   string
	evaluateDataset string
	evaluateRecord  bool
	evaluateNoKNN   bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Train and score models on a held-out split",
	Long: `Split a labelled dataset into training and test rows, train a Naive Bayes model
(and a k-nearest-neighbours baseline when features are numeric), then report
accuracy, per-class precision/recall and the confusion counts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Close()

		if evaluateNoKNN {
			cfg.KNN.Enabled = false
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		ds, err := loadDataset(ctx, cfg, evaluateInput, evaluateDataset)
		if err != nil {
			return err
		}

		train, test, err := ds.Split(cfg.Dataset.TestRatio, cfg.Dataset.Seed)
		if err != nil {
			return err
		}

		fmt.Printf("🧪 Evaluating %s\n", ds.Name)
		fmt.Printf("═══════════════════════════════════════\n")
		fmt.Printf("📊 Rows: %d (train %d, test %d)\n", ds.Rows(), train.Rows(), test.Rows())
		fmt.Printf("🏷️  Labels: %v\n", ds.Labels())
		fmt.Printf("🎲 Prior: %s, zero: %g\n\n", cfg.Classifier.Prior, cfg.Classifier.Zero)

		results, err := evaluate(ctx, cfg, logger, train, test)
		if err != nil {
			return err
		}

		for _, result := range results {
			fmt.Printf("\n🧠 %s (%s)\n", result.model, result.features)
			fmt.Printf("───────────────────────────────────────\n")
			result.report.Print(os.Stdout)
			fmt.Printf("⏱️  Time: %v\n", result.duration)
		}

		if evaluateRecord {
			if err := recordRuns(ctx, cfg, logger, ds.Name, train, test, results); err != nil {
				return err
			}
			fmt.Printf("\n💾 Recorded %d runs for %s\n", len(results), ds.Name)
		}
		return nil
	},
}

// evaluation is the outcome of scoring one model
type evaluation struct {
	model    string
	features string
	report   *metrics.Report[string]
	duration time.Duration
}

// evaluate trains every enabled model and scores them concurrently
func evaluate(ctx context.Context, cfg *config.Config, logger *Logger, train, test *dataset.Dataset) ([]*evaluation, error) {
	enc := newEncoder(cfg)

	start := time.Now()
	nb, err := trainBayes(cfg, enc, train.Inputs, train.Outputs)
	if err != nil {
		return nil, fmt.Errorf("failed to train naive bayes: %w", err)
	}
	logger.Infof("trained naive bayes on %d rows of %d features in %v", train.Rows(), nb.Features(), time.Since(start))

	var neighbours *knnModel
	if cfg.KNN.Enabled {
		neighbours, err = trainKNN(cfg, enc, train.Inputs, train.Outputs)
		if err != nil {
			logger.Warnf("skipping knn: %v", err)
			neighbours = nil
		}
	}

	total := test.Rows()
	if neighbours != nil {
		total *= 2
	}

	tick := func() {}
	if cfg.Evaluation.Progress {
		bar := pb.New(total).SetWriter(os.Stderr).Start()
		defer bar.Finish()
		tick = func() { bar.Increment() }
	}

	results := make([]*evaluation, 2)
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Evaluation.Concurrency)

	g.Go(func() error {
		start := time.Now()
		predictions, err := nb.ClassifyAll(test.Inputs, test.Outputs, tick)
		if err != nil {
			return fmt.Errorf("naive bayes: %w", err)
		}
		report, err := metrics.Evaluate(test.Outputs, predictions, nb.Buckets())
		if err != nil {
			return err
		}
		results[0] = &evaluation{
			model:    bayesModelName(cfg),
			features: fmt.Sprintf("%s, %d features", enc.describe(), nb.Features()),
			report:   report,
			duration: time.Since(start),
		}
		return nil
	})

	if neighbours != nil {
		g.Go(func() error {
			start := time.Now()
			predictions, err := neighbours.PredictAll(test.Inputs, test.Outputs, tick)
			if err != nil {
				return fmt.Errorf("knn: %w", err)
			}
			report, err := metrics.Evaluate(test.Outputs, predictions, nb.Buckets())
			if err != nil {
				return err
			}
			results[1] = &evaluation{
				model:    neighbours.Name(),
				features: cfg.KNN.Distance,
				report:   report,
				duration: time.Since(start),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := results[:0]
	for _, result := range results {
		if result != nil {
			out = append(out, result)
		}
	}
	return out, nil
}

func recordRuns(ctx context.Context, cfg *config.Config, logger *Logger, name string, train, test *dataset.Dataset, results []*evaluation) error {
	if cfg.Store.Backend != "redis" {
		logger.Warnf("store backend is %q; recorded runs are lost when the process exits", cfg.Store.Backend)
	}

	st, err := store.Open(&cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open store: %v", err)
	}
	defer st.Close()

	now := time.Now()
	for _, result := range results {
		run := &store.Run{
			Dataset:   name,
			Model:     result.model,
			Accuracy:  result.report.Accuracy,
			F1:        result.report.F1,
			TrainRows: train.Rows(),
			TestRows:  test.Rows(),
			Duration:  result.duration,
			CreatedAt: now,
		}
		if err := st.RecordRun(ctx, run); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	evaluateCmd.Flags().StringVarP(&evaluateInput, "input", "i", "", "CSV file to evaluate on")
	evaluateCmd.Flags().StringVarP(&evaluateDataset, "dataset", "d", "", "Stored dataset to evaluate on")
	evaluateCmd.Flags().BoolVar(&evaluateRecord, "record", false, "Record results in the configured store")
	evaluateCmd.Flags().BoolVar(&evaluateNoKNN, "no-knn", false, "Skip the nearest neighbour baseline")
}
