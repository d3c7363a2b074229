package main

import (
	"bytes"
	"testing"

	"prime-research/pkg/ai/pipeline"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestRenderState(t *testing.T) {
	color.NoColor = true

	st := pipeline.NewState(pipeline.Input{Topic: "photosynthesis"})
	st.SessionID = "s-1"
	st.Documents = []pipeline.DocumentRef{{Source: "https://example.com/leaf", Title: "Leaves"}}
	st.Notes[pipeline.NotesContent] = "# Guide\n\nLight becomes sugar."
	st.Credibility = []pipeline.CredibilityScore{{Source: "https://example.com/leaf", Title: "Leaves", Score: 0.8, Label: "High"}}
	st.Quiz = []pipeline.QuizQuestion{{
		Question:     "What is produced?",
		Options:      []string{"Salt", "Sugar", "Iron", "Sand"},
		CorrectIndex: 1,
	}}
	st.Graph = pipeline.GraphData{
		Nodes: []pipeline.GraphNode{{ID: "sun", Label: "Sun"}, {ID: "leaf", Label: "Leaf"}},
		Edges: []pipeline.GraphEdge{{ID: "e1", Source: "sun", Target: "leaf", Relation: "feeds"}},
	}

	var buf bytes.Buffer
	renderState(&buf, st)
	out := buf.String()

	assert.Contains(t, out, "Session s-1")
	assert.Contains(t, out, "Leaves (https://example.com/leaf)")
	assert.Contains(t, out, "Light becomes sugar.")
	assert.Contains(t, out, "High   0.80 Leaves")
	assert.Contains(t, out, "* b) Sugar")
	assert.Contains(t, out, "Sun -[feeds]-> Leaf")
}

func TestRenderEmptyState(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	renderState(&buf, pipeline.NewState(pipeline.Input{Topic: "x"}))
	out := buf.String()

	assert.Contains(t, out, "No study guide generated.")
	assert.Contains(t, out, "No sources assessed.")
	assert.Contains(t, out, "Quiz (0)")
	assert.NotContains(t, out, "Session")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "héll…", truncate("héllo world", 4))
}
