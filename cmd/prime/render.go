package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"prime-research/pkg/ai/pipeline"

	"github.com/fatih/color"
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	muted   = color.New(color.FgHiBlack)
)

func renderState(w io.Writer, st pipeline.State) {
	fmt.Fprintln(w)
	if st.SessionID != "" {
		muted.Fprintf(w, "Session %s\n", st.SessionID)
	}

	section(w, fmt.Sprintf("📄 Sources (%d)", len(st.Documents)))
	for _, doc := range st.Documents {
		fmt.Fprintf(w, "  • %s %s\n", doc.Title, muted.Sprintf("(%s)", doc.Source))
	}

	section(w, "📝 Study Guide")
	if guide := st.Notes[pipeline.NotesContent]; guide != "" {
		fmt.Fprintln(w, guide)
	} else {
		muted.Fprintln(w, "  No study guide generated.")
	}
	for _, key := range extraNoteKeys(st.Notes) {
		fmt.Fprintf(w, "\n%s\n%s\n", heading.Sprint(key), st.Notes[key])
	}

	section(w, "⚖️  Source Credibility")
	if len(st.Credibility) == 0 {
		muted.Fprintln(w, "  No sources assessed.")
	}
	for _, c := range st.Credibility {
		fmt.Fprintf(w, "  %s %.2f %s\n", labelColor(c.Label).Sprintf("%-6s", c.Label), c.Score, c.Title)
		if c.Explanation != "" {
			muted.Fprintf(w, "         %s\n", c.Explanation)
		}
	}

	section(w, fmt.Sprintf("❓ Quiz (%d)", len(st.Quiz)))
	for i, q := range st.Quiz {
		fmt.Fprintf(w, "  %d. %s\n", i+1, q.Question)
		for j, opt := range q.Options {
			marker := " "
			if j == q.CorrectIndex {
				marker = color.GreenString("*")
			}
			fmt.Fprintf(w, "     %s %c) %s\n", marker, 'a'+j, opt)
		}
	}

	section(w, fmt.Sprintf("🕸  Knowledge Graph (%d nodes, %d edges)", len(st.Graph.Nodes), len(st.Graph.Edges)))
	labels := make(map[string]string, len(st.Graph.Nodes))
	for _, n := range st.Graph.Nodes {
		labels[n.ID] = n.Label
	}
	for _, e := range st.Graph.Edges {
		fmt.Fprintf(w, "  %s %s %s\n", nodeLabel(labels, e.Source), muted.Sprintf("-[%s]->", e.Relation), nodeLabel(labels, e.Target))
	}
}

func section(w io.Writer, title string) {
	fmt.Fprintln(w)
	heading.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("─", 60))
}

func extraNoteKeys(notes map[string]string) []string {
	keys := make([]string, 0, len(notes))
	for k := range notes {
		if k != pipeline.NotesContent {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func labelColor(label string) *color.Color {
	switch label {
	case "High":
		return color.New(color.FgGreen)
	case "Medium":
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func nodeLabel(labels map[string]string, id string) string {
	if label, ok := labels[id]; ok && label != "" {
		return label
	}
	return id
}
