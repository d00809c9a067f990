package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"blogmodapk-backend/internal/config"
	"blogmodapk-backend/pkg/logger"
	"blogmodapk-backend/pkg/validator"
)

var (
	envFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "blogctl",
	Short: "Operate the Blog ModAPK backend",
	Long: `blogctl runs the Blog ModAPK API and the maintenance tasks around it.

Configuration is read from the environment, optionally loaded from a .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && cmd.Flags().Changed("env-file") {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
		cfg = config.New()
		logger.Init(cfg.LogLevel, cfg.LogFormat)
		validator.Init()
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load before reading configuration")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, createAdminCmd)
}
