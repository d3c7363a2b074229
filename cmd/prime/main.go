// Package main implements the prime command line interface.
package main

import (
	"context"
	"fmt"
	"os"

	"prime-research/internal/bootstrap"
	"prime-research/internal/config"
	"prime-research/internal/pkg/logger"
	"prime-research/internal/tracer"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	cfg       *config.Config
	sysLogger *logger.ZapLogger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "prime",
	Short: "prime - autonomous research and learning assistant",
	Long: `prime researches a topic from the web, local files and explicit URLs,
then produces a study guide, source credibility scores, a quiz and a
knowledge graph.

Logs go to the configured log file so progress output stays readable.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		sysLogger = logger.NewIsolatedLogger(cfg.App.LogFilePath)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if sysLogger != nil {
			_ = sysLogger.Sync()
		}
	},
}

// withContainer boots the full stack for commands that need it and tears it
// down afterwards.
func withContainer(ctx context.Context, fn func(c *bootstrap.Container) error) error {
	shutdownTracer := tracer.InitTracer(cfg.Telemetry, sysLogger)
	defer shutdownTracer(context.WithoutCancel(ctx))

	c, err := bootstrap.NewContainer(ctx, cfg, sysLogger)
	if err != nil {
		return err
	}

	runErr := fn(c)
	if err := c.Close(context.WithoutCancel(ctx)); err != nil && runErr == nil {
		return err
	}
	return runErr
}

func main() {
	rootCmd.AddCommand(researchCmd, historyCmd, logsCmd, indexCmd, migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// migrateCmd creates the knowledge store tables
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the knowledge store tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootstrap.Migrate(cfg); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Knowledge store migrated (%s)", cfg.Database.Driver))
		return nil
	},
}
