package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zpam/classifier/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  `Generate and manage classifier configuration files`,
}

var configGenCmd = &cobra.Command{
	Use:   "generate [config-file]",
	Short: "Generate default configuration file",
	Long:  `Generate a default configuration file with all options`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "config.yaml"
		if len(args) > 0 {
			path = args[0]
		}

		if _, err := os.Stat(path); err == nil {
			overwrite, _ := cmd.Flags().GetBool("force")
			if !overwrite {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
			}
		}

		if err := config.DefaultConfig().SaveConfig(path); err != nil {
			return fmt.Errorf("failed to save config: %v", err)
		}

		fmt.Printf("✅ Configuration file generated: %s\n", path)
		fmt.Printf("📝 Edit the file to choose the prior, smoothing and feature encoding\n")
		fmt.Printf("🚀 Use 'classifier evaluate --config %s' to use the configuration\n", path)
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [config-file]",
	Short: "Validate configuration file",
	Long:  `Validate a configuration file for syntax and logical errors`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(args[0])
		if err != nil {
			return fmt.Errorf("❌ Configuration validation failed: %v", err)
		}

		fmt.Printf("✅ Configuration is valid: %s\n", args[0])

		if warnings := validateConfigLogic(cfg); len(warnings) > 0 {
			fmt.Printf("\n⚠️  Warnings:\n")
			for _, warning := range warnings {
				fmt.Printf("  - %s\n", warning)
			}
		}
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show [config-file]",
	Short: "Show current configuration",
	Long:  `Display the configuration with all values`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.DefaultConfig()
		if len(args) > 0 {
			loaded, err := config.LoadConfig(args[0])
			if err != nil {
				return fmt.Errorf("failed to load config: %v", err)
			}
			cfg = loaded
			fmt.Printf("Configuration: %s\n\n", args[0])
		} else {
			fmt.Printf("Default Configuration:\n\n")
		}

		fmt.Printf("🧠 Naive Bayes:\n")
		fmt.Printf("  Prior: %s\n", cfg.Classifier.Prior)
		fmt.Printf("  Zero: %g\n", cfg.Classifier.Zero)
		if len(cfg.Classifier.Buckets) > 0 {
			fmt.Printf("  Buckets: %v\n", cfg.Classifier.Buckets)
		} else {
			fmt.Printf("  Buckets: from training labels\n")
		}
		if len(cfg.Classifier.Frequencies) > 0 {
			fmt.Printf("  Frequencies: %v\n", cfg.Classifier.Frequencies)
		}

		fmt.Printf("\n📍 Nearest neighbours:\n")
		fmt.Printf("  Enabled: %v\n", cfg.KNN.Enabled)
		fmt.Printf("  K: %d\n", cfg.KNN.K)
		fmt.Printf("  Distance: %s\n", cfg.KNN.Distance)

		fmt.Printf("\n📊 Dataset:\n")
		fmt.Printf("  Features: %s\n", newEncoder(cfg).mode)
		fmt.Printf("  Label column: %d\n", cfg.Dataset.LabelColumn)
		fmt.Printf("  Test ratio: %.2f (seed %d)\n", cfg.Dataset.TestRatio, cfg.Dataset.Seed)

		fmt.Printf("\n💾 Store:\n")
		fmt.Printf("  Backend: %s\n", cfg.Store.Backend)
		if cfg.Store.Backend == "redis" && cfg.Store.Redis != nil {
			fmt.Printf("  Redis: %s (db %d, prefix %s)\n", cfg.Store.Redis.RedisURL, cfg.Store.Redis.DatabaseNum, cfg.Store.Redis.KeyPrefix)
		}

		fmt.Printf("\n⚡ Evaluation:\n")
		fmt.Printf("  Concurrency: %d\n", cfg.Evaluation.Concurrency)
		fmt.Printf("  Progress: %v\n", cfg.Evaluation.Progress)
		return nil
	},
}

// validateConfigLogic reports settings that are valid but likely unintended
func validateConfigLogic(cfg *config.Config) []string {
	var warnings []string

	if cfg.Classifier.Zero == 0 {
		warnings = append(warnings, "zero is 0: one unseen feature value rules a label out entirely")
	}

	if cfg.Classifier.Prior == "uniform" && len(cfg.Classifier.Frequencies) > 0 {
		warnings = append(warnings, "frequencies are ignored by the uniform prior")
	}

	if cfg.KNN.Enabled && cfg.KNN.K%2 == 0 {
		warnings = append(warnings, "even k allows tied votes between two labels")
	}

	if cfg.Dataset.Text.Enabled && cfg.Dataset.Bins > 0 {
		warnings = append(warnings, "bins are ignored when text features are enabled")
	}

	if cfg.Dataset.TestRatio > 0.5 {
		warnings = append(warnings, "more rows are held out for testing than used for training")
	}

	return warnings
}

func init() {
	configCmd.AddCommand(configGenCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)

	configGenCmd.Flags().Bool("force", false, "Overwrite existing config file")
}
