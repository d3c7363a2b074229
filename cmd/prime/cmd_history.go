package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"prime-research/internal/bootstrap"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var historyLimit int

// historyCmd lists past research sessions
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past research sessions, newest first",
	RunE:  runHistory,
}

// logsCmd prints entries from the log file
var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent log entries",
	Long: `Show recent log entries, newest first.

Stages that degrade instead of failing (unparseable replies, unreachable
sources, index failures) only leave a trace here.`,
	RunE: runLogs,
}

// indexCmd groups vector index maintenance
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the vector index",
}

var indexClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every indexed chunk",
	RunE:  runIndexClear,
}

var (
	logLevel string
	logLimit int
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum sessions to list")

	logsCmd.Flags().StringVarP(&logLevel, "level", "l", "", "only show this level (DEBUG, INFO, WARN, ERROR)")
	logsCmd.Flags().IntVarP(&logLimit, "limit", "n", 50, "maximum entries to show")

	indexCmd.AddCommand(indexClearCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	out := cmd.OutOrStdout()

	return withContainer(ctx, func(c *bootstrap.Container) error {
		sessions, err := c.Knowledge.ListSessions(ctx, historyLimit, 0)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No research sessions yet.")
			return nil
		}

		heading.Fprintln(out, "📚 Research History")
		fmt.Fprintln(out, strings.Repeat("─", 60))
		for _, s := range sessions {
			fmt.Fprintf(out, "%s  %s %s\n",
				muted.Sprint(s.CreatedAt.Format("2006-01-02 15:04")),
				s.Topic,
				muted.Sprintf("(depth %d, %s)", s.Depth, s.Id),
			)
			if s.Summary != "" {
				fmt.Fprintf(out, "    %s\n", truncate(s.Summary, 100))
			}
		}
		return nil
	})
}

func runLogs(cmd *cobra.Command, args []string) error {
	entries, err := sysLogger.GetLogs(strings.ToUpper(logLevel), logLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to read logs: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No log entries.")
		return nil
	}

	for _, e := range entries {
		level := color.New(color.FgBlue)
		switch e.Level {
		case "WARN":
			level = color.New(color.FgYellow)
		case "ERROR":
			level = color.New(color.FgRed)
		}
		fmt.Fprintf(out, "%s %s %s %s\n", muted.Sprint(e.Timestamp), level.Sprintf("%-5s", e.Level), color.CyanString("[%s]", e.Module), e.Message)
		if errMsg, ok := e.Details["error"]; ok {
			muted.Fprintf(out, "      error: %v\n", errMsg)
		}
	}
	return nil
}

func runIndexClear(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	return withContainer(ctx, func(c *bootstrap.Container) error {
		if err := c.Research.ClearIndex(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Vector index cleared (%s)", cfg.Vector.Collection))
		return nil
	})
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "…"
}
