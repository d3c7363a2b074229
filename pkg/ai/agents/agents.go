package agents

import (
	"context"
	"time"

	"prime-research/internal/entity"
	"prime-research/internal/pkg/logger"
	"prime-research/pkg/ai/pipeline"
	"prime-research/pkg/ai/reasoning"
	"prime-research/pkg/embedding"
	"prime-research/pkg/loader"
	"prime-research/pkg/search"
	"prime-research/pkg/vectorindex"
)

// Reasoner is satisfied by *reasoning.Service.
type Reasoner interface {
	GenerateText(ctx context.Context, prompt, system string) (string, error)
	GenerateStructured(ctx context.Context, prompt string, schema string) (reasoning.Decoded, error)
}

// Index is satisfied by *vectorindex.Index. Both calls log and degrade
// instead of returning errors.
type Index interface {
	Add(ctx context.Context, docs []vectorindex.Document) int
	Search(ctx context.Context, query string, k int, filter map[string]interface{}) []vectorindex.Result
}

// Loader fetches one source (URL or file path) as raw text.
type Loader interface {
	Load(ctx context.Context, source string) (loader.Document, error)
}

// KnowledgeStore is the subset of service.IKnowledgeService the stages write to.
type KnowledgeStore interface {
	CreateSession(ctx context.Context, topic string, depth int) (string, error)
	UpdateSessionSummary(ctx context.Context, sessionId, summary string) error
	UpsertNode(ctx context.Context, node entity.GraphNode) (bool, error)
	InsertEdge(ctx context.Context, sourceId, targetId, relation string, metadata map[string]interface{}) (string, error)
	ExistingNodeIDs(ctx context.Context, ids []string) (map[string]bool, error)
}

type Settings struct {
	ChunkSize        int
	ChunkOverlap     int
	ResultsPerDepth  int
	CredibilityDelay time.Duration
	SummaryContextK  int
	QuizQuestions    int
	QuizFallbackK    int
	MinQuizContext   int
}

func DefaultSettings() Settings {
	return Settings{
		ChunkSize:        1000,
		ChunkOverlap:     100,
		ResultsPerDepth:  3,
		CredibilityDelay: 2 * time.Second,
		SummaryContextK:  25,
		QuizQuestions:    5,
		QuizFallbackK:    5,
		MinQuizContext:   100,
	}
}

// Deps bundles the collaborators of the research stages.
type Deps struct {
	Reasoner Reasoner
	Index    Index
	Store    KnowledgeStore
	Searcher search.Searcher
	Web      Loader
	Files    Loader
	Logger   logger.ILogger
	Settings Settings
	// Sleep paces credibility calls; nil means embedding.ContextSleep.
	Sleep embedding.Sleeper
}

// Stages returns the research pipeline in execution order.
func Stages(d Deps) []pipeline.Stage {
	if d.Sleep == nil {
		d.Sleep = embedding.ContextSleep
	}
	return []pipeline.Stage{
		{Name: pipeline.StageOrchestrate, Run: NewOrchestrator(d.Store, d.Logger).Run},
		{Name: pipeline.StageResearch, Run: NewResearcher(d).Run},
		{Name: pipeline.StageSummarize, Run: NewSummarizer(d.Reasoner, d.Index, d.Settings.SummaryContextK, d.Logger).Run},
		{Name: pipeline.StageAssessCredibility, Run: NewCredibilityAssessor(d.Reasoner, d.Index, d.Settings.CredibilityDelay, d.Sleep, d.Logger).Run},
		{Name: pipeline.StageLearningContent, Run: NewQuizGenerator(d.Reasoner, d.Index, d.Settings, d.Logger).Run},
		{Name: pipeline.StageKnowledgeGraph, Run: NewGraphBuilder(d.Reasoner, d.Store, d.Logger).Run},
		{Name: pipeline.StageRecordProgress, Run: NewProgressRecorder(d.Store, d.Logger).Run},
	}
}
