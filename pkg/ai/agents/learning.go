package agents

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"prime-research/internal/pkg/logger"
	"prime-research/pkg/ai/pipeline"
	"prime-research/pkg/ai/prompt"
	"prime-research/pkg/ai/reasoning"
)

const learningModule = "LEARNING"

const optionsPerQuestion = 4

// QuizGenerator builds a multiple choice quiz from the summary and notes,
// falling back to indexed chunks when those are too thin.
type QuizGenerator struct {
	reasoner  Reasoner
	index     Index
	questions int
	fallbackK int
	minLength int
	logger    logger.ILogger
}

func NewQuizGenerator(reasoner Reasoner, index Index, settings Settings, log logger.ILogger) *QuizGenerator {
	defaults := DefaultSettings()
	q := &QuizGenerator{
		reasoner:  reasoner,
		index:     index,
		questions: settings.QuizQuestions,
		fallbackK: settings.QuizFallbackK,
		minLength: settings.MinQuizContext,
		logger:    log,
	}
	if q.questions <= 0 {
		q.questions = defaults.QuizQuestions
	}
	if q.fallbackK <= 0 {
		q.fallbackK = defaults.QuizFallbackK
	}
	return q
}

func (q *QuizGenerator) Run(ctx context.Context, state pipeline.State) (pipeline.State, error) {
	material := generatedContext(state)
	q.logger.Debug(learningModule, "Quiz context assembled", map[string]interface{}{"length": utf8.RuneCountInString(material)})

	if utf8.RuneCountInString(material) < q.minLength {
		q.logger.Warn(learningModule, "Context too short, falling back to the vector index", map[string]interface{}{
			"length": utf8.RuneCountInString(material),
		})
		results := q.index.Search(ctx, state.Topic, q.fallbackK, nil)
		parts := make([]string, 0, len(results))
		for _, r := range results {
			parts = append(parts, r.Content)
		}
		material = strings.TrimSpace(strings.Join(parts, "\n\n"))
	}

	if material == "" {
		q.logger.Warn(learningModule, "No context available for quiz generation", nil)
		state.Quiz = []pipeline.QuizQuestion{}
		return state, nil
	}

	decoded, err := q.reasoner.GenerateStructured(ctx, prompt.Quiz(material, q.questions, ""), prompt.QuizSchema)
	if err != nil {
		q.logger.Warn(learningModule, "Quiz generation failed", map[string]interface{}{"error": err})
		state.Quiz = []pipeline.QuizQuestion{}
		return state, nil
	}

	state.Quiz = q.parseQuiz(decoded)
	q.logger.Info(learningModule, "Quiz generated", map[string]interface{}{"questions": len(state.Quiz)})
	return state, nil
}

// parseQuiz accepts a bare array of questions or an object with a
// "questions" array. Malformed questions are dropped.
func (q *QuizGenerator) parseQuiz(decoded reasoning.Decoded) []pipeline.QuizQuestion {
	quiz := []pipeline.QuizQuestion{}

	var items []map[string]interface{}
	if arr, ok := decoded.Array(); ok {
		items = objects(arr)
	} else if obj, ok := decoded.Object(); ok {
		items = objects(obj["questions"])
	} else {
		q.logger.Warn(learningModule, "Quiz response unparseable", map[string]interface{}{"kind": decoded.Kind.String()})
		return quiz
	}

	for i, item := range items {
		question, ok := parseQuestion(item)
		if !ok {
			q.logger.Warn(learningModule, "Dropping malformed quiz question", map[string]interface{}{"position": i})
			continue
		}
		quiz = append(quiz, question)
		if len(quiz) == q.questions {
			break
		}
	}
	return quiz
}

func parseQuestion(item map[string]interface{}) (pipeline.QuizQuestion, bool) {
	text, ok := stringField(item, "question")
	if !ok {
		return pipeline.QuizQuestion{}, false
	}
	options, ok := stringSlice(item["options"])
	if !ok || len(options) != optionsPerQuestion {
		return pipeline.QuizQuestion{}, false
	}
	correct, ok := intField(item, "correct_index")
	if !ok || correct < 0 || correct >= optionsPerQuestion {
		return pipeline.QuizQuestion{}, false
	}
	explanation, _ := stringField(item, "explanation")

	return pipeline.QuizQuestion{
		Question:     text,
		Options:      options,
		CorrectIndex: correct,
		Explanation:  explanation,
	}, true
}

// generatedContext joins the summary and every note section, ordered by key.
func generatedContext(state pipeline.State) string {
	keys := make([]string, 0, len(state.Notes))
	for k := range state.Notes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := []string{state.Summary}
	for _, k := range keys {
		parts = append(parts, state.Notes[k])
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}
