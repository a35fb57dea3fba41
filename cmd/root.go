// Package cmd implements the line-mcp-server CLI using cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tachiyu/line-mcp-server/internal/config"
	"github.com/tachiyu/line-mcp-server/internal/logging"
)

const version = "0.1.0"

var (
	cfgFile  string
	envFile  string
	logLevel string

	appCfg   *config.Config
	closeLog = func() {}
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "line-mcp-server",
	Short: "MCP tool server that pushes LINE notifications",
	Long: "line-mcp-server serves MCP tools over SSE and pushes text and image\n" +
		"messages through the LINE Messaging API.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) { closeLog() },
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default "+config.ConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(statusCmd)
}

// setup loads the dotenv file, the config file and the environment overrides,
// in that order, then configures logging.
func setup(_ *cobra.Command, _ []string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.ApplyEnvOverrides(cfg); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	cleanup, err := logging.Init(cfg.LogFilePath(), cfg.Log.Level)
	if err != nil {
		return err
	}
	appCfg = cfg
	closeLog = cleanup
	return nil
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.ConfigPath()
}
