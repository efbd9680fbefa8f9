package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zpam/classifier/pkg/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "classifier",
	Short: "Naive Bayes and nearest neighbour classification of tabular data",
	Long: `classifier trains Naive Bayes models on labelled CSV data and scores them
against a held-out split, optionally next to a k-nearest-neighbours baseline.

Datasets and evaluation history can be kept in memory or in Redis.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("classifier - Naive Bayes toolkit")
		fmt.Println("Use 'classifier --help' for usage information")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

// setup loads configuration and opens the logger every command shares
func setup() (*config.Config, *Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %v", err)
	}

	logger, err := NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}

	if configPath != "" {
		logger.Debugf("loaded configuration from %s", configPath)
	}
	return cfg, logger, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file (defaults when empty)")

	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(datasetCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(benchmarkCmd)
}
