package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"quizzit/config"
	"quizzit/logger"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:           "quizzit",
	Short:         "Live quiz game server",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

// loadConfig reads configuration and applies its logging settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	logger.Configure(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}
