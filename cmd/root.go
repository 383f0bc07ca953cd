// Package cmd holds the CLI entrypoints.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/flexfleet/flexdispatch/app"
	"github.com/flexfleet/flexdispatch/config"
	"github.com/flexfleet/flexdispatch/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "flexdispatch",
	Short: "Flex truck dispatch service",
	Long:  "Assigns flex trucks to rollcage shortfalls between depots and crossdocks for one process day.",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error {
	// Local development convenience; silently absent in production.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Inputs.Orders == "" {
		return fmt.Errorf("inputs: orders path is required for a day run")
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	svc.ServeMetrics(ctx)
	return svc.Run(ctx)
}
