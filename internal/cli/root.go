package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ledgerbot/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:   "ledgerbot",
	Short: "Telegram bot for personal projects, tasks and expenses",
	Long: `ledgerbot tracks personal projects and paid orders, their tasks, and
day-to-day expenses through a Telegram chat, and reports profit from
completed orders minus expenses.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("env", config.GetConfigEnv(), "Config environment (loads <env>.yaml over base.yaml)")
	rootCmd.PersistentFlags().String("config-dir", config.GetConfigDir(), "Directory holding the YAML config files")
}

// Execute runs the command line.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	env, _ := cmd.Flags().GetString("env")
	dir, _ := cmd.Flags().GetString("config-dir")

	cfg, err := config.Load(env, dir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
