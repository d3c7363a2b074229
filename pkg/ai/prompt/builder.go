package prompt

import (
	"fmt"
	"strings"
)

// Context limits, in runes.
const (
	StudyGuideContextLimit = 40000
	QuizContextLimit       = 10000
	GraphContextLimit      = 10000
	CredibilitySampleLimit = 2000
	DefaultQuizDifficulty  = "intermediate"
)

const studyGuideSystem = "You are an expert university-level educator. " +
	"You turn messy, multi-source raw text into a single, clear, deeply structured " +
	"study guide that is accurate, complete and easy to revise from. " +
	"You avoid generic filler and focus on depth and structure."

// StudyGuide returns the system prompt and the user prompt for the
// summarization stage.
func StudyGuide(topic, context string) (system string, user string) {
	var b strings.Builder

	b.WriteString("<task>\n")
	b.WriteString("You will receive raw content extracted from one or more sources (web pages, PDFs, articles).\n")
	fmt.Fprintf(&b, "Create a complete, well structured study guide for the topic: %s\n", topic)
	b.WriteString("</task>\n\n")

	b.WriteString("<rules>\n")
	b.WriteString("1. Reconstruct missing structure logically.\n")
	b.WriteString("2. If the source is shallow or fragmented, enrich it with clear explanations while staying on topic.\n")
	b.WriteString("3. Merge all ideas into one coherent guide.\n")
	b.WriteString("4. Do not introduce facts unrelated to the topic.\n")
	b.WriteString("5. Tables must be valid markdown, one table per block, no raw source lines in headers.\n")
	b.WriteString("</rules>\n\n")

	b.WriteString("<output_format>\n")
	fmt.Fprintf(&b, "# %s: Study Guide\n", topic)
	b.WriteString("Start with one short paragraph that summarizes the topic.\n")
	b.WriteString("## 1. Core Concepts & Definitions\n")
	b.WriteString("## 2. Breakdown of Subtopics\n")
	b.WriteString("## 3. Processes and Workflows\n")
	b.WriteString("## 4. Tables (only if the topic has classifications or comparisons)\n")
	b.WriteString("## 5. Components and Roles\n")
	b.WriteString("## 6. Examples\n")
	b.WriteString("## 7. Key Principles and Formulas\n")
	b.WriteString("## 8. Applications\n")
	b.WriteString("## 9. Quick Revision Sheet (10-15 bullet points)\n")
	b.WriteString("</output_format>\n\n")

	b.WriteString("<source_content>\n")
	b.WriteString(Truncate(context, StudyGuideContextLimit))
	b.WriteString("\n</source_content>\n\n")
	b.WriteString("Now write the complete study guide:")

	return studyGuideSystem, b.String()
}

// Credibility asks for a rating of one source based on a text sample.
func Credibility(source, sample string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Assess the credibility and bias of the following text from source '%s'.\n\n", source)
	b.WriteString("<text>\n")
	b.WriteString(Truncate(sample, CredibilitySampleLimit))
	b.WriteString("\n</text>")
	return b.String()
}

// Quiz asks for count multiple choice questions grounded in context.
func Quiz(context string, count int, difficulty string) string {
	if difficulty == "" {
		difficulty = DefaultQuizDifficulty
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d %s-level multiple choice questions based on the following text.\n", count, difficulty)
	b.WriteString("Every question has exactly 4 options and correct_index is the 0-based index of the right option.\n\n")
	b.WriteString("<text>\n")
	b.WriteString(Truncate(context, QuizContextLimit))
	b.WriteString("\n</text>")
	return b.String()
}

// KnowledgeGraph asks for the key concepts in context and their relations.
func KnowledgeGraph(context string) string {
	var b strings.Builder
	b.WriteString("Extract key concepts and relationships from the following text to build a knowledge graph.\n")
	b.WriteString("Use short lowercase snake_case ids. Every edge must connect two ids listed in nodes.\n\n")
	b.WriteString("<text>\n")
	b.WriteString(Truncate(context, GraphContextLimit))
	b.WriteString("\n</text>")
	return b.String()
}

// Truncate cuts s to at most limit runes.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
