package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"prime-research/internal/pkg/logger"
	"prime-research/pkg/ai/pipeline"
	"prime-research/pkg/ai/prompt"
	"prime-research/pkg/embedding"
)

const credibilityModule = "CREDIBILITY"

// CredibilityAssessor rates each unique source once, using one indexed chunk
// of that source as the sample. Calls after the first are spaced by a fixed
// delay.
type CredibilityAssessor struct {
	reasoner Reasoner
	index    Index
	delay    time.Duration
	sleep    embedding.Sleeper
	logger   logger.ILogger
}

func NewCredibilityAssessor(reasoner Reasoner, index Index, delay time.Duration, sleep embedding.Sleeper, log logger.ILogger) *CredibilityAssessor {
	if sleep == nil {
		sleep = embedding.ContextSleep
	}
	return &CredibilityAssessor{reasoner: reasoner, index: index, delay: delay, sleep: sleep, logger: log}
}

func (c *CredibilityAssessor) Run(ctx context.Context, state pipeline.State) (pipeline.State, error) {
	sources := uniqueSources(state.Documents)
	c.logger.Info(credibilityModule, "Starting credibility assessment", map[string]interface{}{"sources": len(sources)})

	scores := make([]pipeline.CredibilityScore, 0, len(sources))
	for i, doc := range sources {
		if i > 0 && c.delay > 0 {
			c.logger.Debug(credibilityModule, "Throttling before next source", map[string]interface{}{"delay": c.delay.String()})
			if err := c.sleep(ctx, c.delay); err != nil {
				state.Credibility = scores
				return state, fmt.Errorf("credibility throttle interrupted: %w", err)
			}
		}

		if score, ok := c.assess(ctx, doc); ok {
			scores = append(scores, score)
		}
	}

	state.Credibility = scores
	return state, nil
}

func (c *CredibilityAssessor) assess(ctx context.Context, doc pipeline.DocumentRef) (pipeline.CredibilityScore, bool) {
	details := map[string]interface{}{"source": doc.Source}

	results := c.index.Search(ctx, doc.Source, 1, map[string]interface{}{"source": doc.Source})
	if len(results) == 0 {
		c.logger.Warn(credibilityModule, "No indexed chunk for source, skipping", details)
		return pipeline.CredibilityScore{}, false
	}

	decoded, err := c.reasoner.GenerateStructured(ctx, prompt.Credibility(doc.Source, results[0].Content), prompt.CredibilitySchema)
	if err != nil {
		details["error"] = err
		c.logger.Warn(credibilityModule, "Assessment call failed, skipping source", details)
		return pipeline.CredibilityScore{}, false
	}
	obj, ok := decoded.Object()
	if !ok {
		details["kind"] = decoded.Kind.String()
		c.logger.Warn(credibilityModule, "Assessment unparseable, skipping source", details)
		return pipeline.CredibilityScore{}, false
	}

	score, missing := parseAssessment(obj)
	if len(missing) == 4 {
		c.logger.Warn(credibilityModule, "Assessment has none of the expected keys, skipping source", details)
		return pipeline.CredibilityScore{}, false
	}
	if len(missing) > 0 {
		details["missing"] = strings.Join(missing, ",")
		c.logger.Warn(credibilityModule, "Assessment incomplete, keeping recovered keys", details)
	}

	score.Source = doc.Source
	score.Title = doc.Title
	return score, true
}

// parseAssessment reads whatever keys are present and lists the absent ones.
// A missing label is derived from the score.
func parseAssessment(obj map[string]interface{}) (pipeline.CredibilityScore, []string) {
	var out pipeline.CredibilityScore
	var missing []string

	score, hasScore := numberField(obj, "score")
	if hasScore {
		out.Score = min(max(score, 0), 1)
	} else {
		missing = append(missing, "score")
	}

	if label, ok := stringField(obj, "label"); ok {
		out.Label = label
	} else {
		missing = append(missing, "label")
		if hasScore {
			out.Label = labelFor(out.Score)
		}
	}
	if bias, ok := stringField(obj, "bias"); ok {
		out.Bias = bias
	} else {
		missing = append(missing, "bias")
	}
	if explanation, ok := stringField(obj, "explanation"); ok {
		out.Explanation = explanation
	} else {
		missing = append(missing, "explanation")
	}
	return out, missing
}

func labelFor(score float64) string {
	switch {
	case score >= 0.7:
		return "High"
	case score >= 0.4:
		return "Medium"
	default:
		return "Low"
	}
}

// uniqueSources keeps the first document seen for each source.
func uniqueSources(docs []pipeline.DocumentRef) []pipeline.DocumentRef {
	seen := make(map[string]bool, len(docs))
	out := make([]pipeline.DocumentRef, 0, len(docs))
	for _, d := range docs {
		if d.Source == "" || seen[d.Source] {
			continue
		}
		seen[d.Source] = true
		out = append(out, d)
	}
	return out
}
