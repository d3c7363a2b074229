package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"prime-research/internal/bootstrap"
	"prime-research/pkg/ai/pipeline"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	researchTopic string
	researchDepth int
	researchURLs  []string
	researchFiles []string
)

// researchCmd runs the full pipeline for one topic
var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Research a topic and print the learning material",
	Long: `Research a topic and print the learning material.

Depth 0 skips web search; explicit --url and --file sources are always
loaded. Each completed stage is reported as it finishes.`,
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().StringVarP(&researchTopic, "topic", "t", "", "topic to research (required)")
	researchCmd.Flags().IntVarP(&researchDepth, "depth", "d", 1, "search depth, 0 disables web search")
	researchCmd.Flags().StringArrayVar(&researchURLs, "url", nil, "extra URL to load (repeatable)")
	researchCmd.Flags().StringArrayVar(&researchFiles, "file", nil, "local .txt/.md/.pdf file to load (repeatable)")
	_ = researchCmd.MarkFlagRequired("topic")
}

func runResearch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	in := pipeline.Input{
		Topic: researchTopic,
		Depth: researchDepth,
		URLs:  researchURLs,
		Files: researchFiles,
	}
	out := cmd.OutOrStdout()

	return withContainer(ctx, func(c *bootstrap.Container) error {
		color.New(color.FgCyan, color.Bold).Fprintf(out, "🔎 Researching %q (depth %d)\n", in.Topic, in.Depth)

		onStep := func(step pipeline.Step, index, total int) {
			fmt.Fprintf(out, "  %s %s\n", color.HiBlackString("[%d/%d]", index, total), color.GreenString("✓ %s", step.Stage))
		}

		state, err := c.Research.Run(ctx, in, onStep)
		if err != nil {
			var stageErr *pipeline.StageError
			if errors.As(err, &stageErr) {
				fmt.Fprintln(out, color.RedString("  ✗ %s", stageErr.Stage))
			}
			return err
		}

		renderState(out, state)
		return nil
	})
}
