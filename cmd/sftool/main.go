// Command sftool drives the Salesforce file tools from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/beeper/salesforce-tools/pkg/salesforce"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "sftool",
	Short: "Download, personalize, and publish Salesforce files",
	Long: `sftool runs the same Salesforce file tools the MCP server exposes,
directly from the terminal.

Credentials come from SALESFORCE_INSTANCE_URL and SALESFORCE_ACCESS_TOKEN,
a .env file in the working directory, or a YAML config file passed with
--config.`,
	Version:      "0.1.0",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()

		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.StampMilli}).
			With().Timestamp().Logger().Level(level)
		cmd.SetContext(log.WithContext(cmd.Context()))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(downloadCmd, personalizeCmd, publishCmd, checkCmd, toolsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func resolveConfig() (*salesforce.Config, error) {
	if configPath != "" {
		cfg, err := salesforce.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}
	return salesforce.ConfigFromEnv(), nil
}
