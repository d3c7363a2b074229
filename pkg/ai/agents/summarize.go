package agents

import (
	"context"
	"strings"

	"prime-research/internal/pkg/logger"
	"prime-research/pkg/ai/pipeline"
	"prime-research/pkg/ai/prompt"
)

const summarizeModule = "SUMMARIZE"

const maxSummaryRunes = 1000

// Summarizer turns the top indexed chunks for the topic into a markdown
// study guide stored under Notes[pipeline.NotesContent].
type Summarizer struct {
	reasoner Reasoner
	index    Index
	k        int
	logger   logger.ILogger
}

func NewSummarizer(reasoner Reasoner, index Index, k int, log logger.ILogger) *Summarizer {
	if k <= 0 {
		k = DefaultSettings().SummaryContextK
	}
	return &Summarizer{reasoner: reasoner, index: index, k: k, logger: log}
}

func (s *Summarizer) Run(ctx context.Context, state pipeline.State) (pipeline.State, error) {
	results := s.index.Search(ctx, state.Topic, s.k, nil)
	contents := make([]string, 0, len(results))
	for _, r := range results {
		contents = append(contents, r.Content)
	}
	material := strings.TrimSpace(strings.Join(contents, "\n\n"))

	if material == "" {
		s.logger.Warn(summarizeModule, "No context found for summarization", map[string]interface{}{"topic": state.Topic})
		return state, nil
	}

	system, user := prompt.StudyGuide(state.Topic, material)
	guide, err := s.reasoner.GenerateText(ctx, user, system)
	if err != nil {
		s.logger.Warn(summarizeModule, "Study guide generation failed", map[string]interface{}{"error": err})
		return state, nil
	}
	guide = strings.TrimSpace(guide)
	if guide == "" {
		s.logger.Warn(summarizeModule, "Study guide came back empty", nil)
		return state, nil
	}

	notes := make(map[string]string, len(state.Notes)+1)
	for k, v := range state.Notes {
		notes[k] = v
	}
	notes[pipeline.NotesContent] = guide
	state.Notes = notes
	state.Summary = leadParagraph(guide)

	s.logger.Info(summarizeModule, "Study guide generated", map[string]interface{}{
		"chunks": len(results),
		"length": len(guide),
	})
	return state, nil
}

// leadParagraph returns the first paragraph of a markdown document that is
// not a heading, rule or table.
func leadParagraph(markdown string) string {
	for _, block := range strings.Split(markdown, "\n\n") {
		var lines []string
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "|") || strings.Trim(line, "-=*_") == "" {
				continue
			}
			lines = append(lines, line)
		}
		if len(lines) > 0 {
			return prompt.Truncate(strings.Join(lines, " "), maxSummaryRunes)
		}
	}
	return ""
}
