package service

import (
	"context"
	"fmt"
	"time"

	"prime-research/internal/entity"
	"prime-research/internal/metrics"
	"prime-research/internal/pkg/logger"
	"prime-research/internal/repository/specification"
	"prime-research/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const knowledgeModule = "KNOWLEDGE_STORE"

// IKnowledgeService is the relational store behind the pipeline: sessions,
// graph nodes and edges, quiz results. Single-item writes return their error;
// bulk callers log and skip per item.
type IKnowledgeService interface {
	CreateSession(ctx context.Context, topic string, depth int) (string, error)
	UpdateSessionSummary(ctx context.Context, sessionId, summary string) error
	GetSession(ctx context.Context, sessionId string) (*entity.Session, error)
	ListSessions(ctx context.Context, limit, offset int) ([]*entity.Session, error)

	// UpsertNode inserts a node unless its id exists. It reports whether a
	// row was added; an existing id is neither an error nor overwritten.
	UpsertNode(ctx context.Context, node entity.GraphNode) (bool, error)
	// InsertEdge always adds a row with a fresh id. Endpoints are not
	// checked against nodes.
	InsertEdge(ctx context.Context, sourceId, targetId, relation string, metadata map[string]interface{}) (string, error)
	ExistingNodeIDs(ctx context.Context, ids []string) (map[string]bool, error)
	GetGraph(ctx context.Context, nodeIds []string) ([]*entity.GraphNode, []*entity.GraphEdge, error)

	RecordQuizResult(ctx context.Context, sessionId string, score float64, total int) (*entity.QuizResult, error)
	ListQuizResults(ctx context.Context, sessionId string) ([]*entity.QuizResult, error)
}

// newRowID returns a time-ordered UUIDv7, so ids sort in creation order when
// timestamps tie.
func newRowID() string {
	return uuid.Must(uuid.NewV7()).String()
}

type knowledgeService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
	metrics    *metrics.Collector
}

func NewKnowledgeService(
	uowFactory unitofwork.RepositoryFactory,
	logger logger.ILogger,
	metrics *metrics.Collector,
) IKnowledgeService {
	return &knowledgeService{
		uowFactory: uowFactory,
		logger:     logger,
		metrics:    metrics,
	}
}

func (s *knowledgeService) CreateSession(ctx context.Context, topic string, depth int) (string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session := &entity.Session{
		Id:        newRowID(),
		Topic:     topic,
		Depth:     depth,
		CreatedAt: time.Now(),
	}
	err := uow.SessionRepository().Create(ctx, session)
	s.metrics.RecordStoreWrite("sessions", err)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info(knowledgeModule, "Session created", map[string]interface{}{
		"session_id": session.Id,
		"topic":      topic,
		"depth":      depth,
	})
	return session.Id, nil
}

func (s *knowledgeService) UpdateSessionSummary(ctx context.Context, sessionId, summary string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	updated, err := uow.SessionRepository().UpdateSummary(ctx, sessionId, summary)
	s.metrics.RecordStoreWrite("sessions", err)
	if err != nil {
		return fmt.Errorf("failed to update session summary: %w", err)
	}
	if !updated {
		s.logger.Debug(knowledgeModule, "Summary update skipped, session not found", map[string]interface{}{
			"session_id": sessionId,
		})
	}
	return nil
}

func (s *knowledgeService) GetSession(ctx context.Context, sessionId string) (*entity.Session, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
}

func (s *knowledgeService) ListSessions(ctx context.Context, limit, offset int) ([]*entity.Session, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{specification.MostRecentFirst{}}
	if limit > 0 {
		specs = append(specs, specification.Pagination{Limit: limit, Offset: offset})
	}
	return uow.SessionRepository().FindAll(ctx, specs...)
}

func (s *knowledgeService) UpsertNode(ctx context.Context, node entity.GraphNode) (bool, error) {
	if node.Id == "" {
		return false, fmt.Errorf("node id is required")
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)

	inserted, err := uow.NodeRepository().InsertIgnore(ctx, &node)
	s.metrics.RecordStoreWrite("nodes", err)
	if err != nil {
		return false, fmt.Errorf("failed to upsert node %s: %w", node.Id, err)
	}
	return inserted, nil
}

func (s *knowledgeService) InsertEdge(ctx context.Context, sourceId, targetId, relation string, metadata map[string]interface{}) (string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	edge := &entity.GraphEdge{
		Id:       uuid.NewString(),
		SourceId: sourceId,
		TargetId: targetId,
		Relation: relation,
		Metadata: metadata,
	}
	err := uow.EdgeRepository().Create(ctx, edge)
	s.metrics.RecordStoreWrite("edges", err)
	if err != nil {
		return "", fmt.Errorf("failed to insert edge %s->%s: %w", sourceId, targetId, err)
	}
	return edge.Id, nil
}

func (s *knowledgeService) ExistingNodeIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)

	nodes, err := uow.NodeRepository().FindAll(ctx, specification.ByIDs{IDs: ids})
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		existing[n.Id] = true
	}
	return existing, nil
}

// GetGraph returns the given nodes and every edge touching them. An empty
// nodeIds returns the whole graph.
func (s *knowledgeService) GetGraph(ctx context.Context, nodeIds []string) ([]*entity.GraphNode, []*entity.GraphEdge, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var nodeSpecs, edgeSpecs []specification.Specification
	if len(nodeIds) > 0 {
		nodeSpecs = append(nodeSpecs, specification.ByIDs{IDs: nodeIds})
		edgeSpecs = append(edgeSpecs, specification.TouchingNodes{NodeIDs: nodeIds})
	}

	nodes, err := uow.NodeRepository().FindAll(ctx, nodeSpecs...)
	if err != nil {
		return nil, nil, err
	}
	edges, err := uow.EdgeRepository().FindAll(ctx, edgeSpecs...)
	if err != nil {
		return nil, nil, err
	}
	return nodes, edges, nil
}

// RecordQuizResult looks up the session and inserts the result in one
// transaction.
func (s *knowledgeService) RecordQuizResult(ctx context.Context, sessionId string, score float64, total int) (*entity.QuizResult, error) {
	if score < 0 || total < 0 || score > float64(total) {
		return nil, fmt.Errorf("invalid quiz score %g/%d", score, total)
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	result := &entity.QuizResult{
		Id:             newRowID(),
		SessionId:      sessionId,
		Score:          score,
		TotalQuestions: total,
		CreatedAt:      time.Now(),
	}
	err = uow.QuizResultRepository().Create(ctx, result)
	if err == nil {
		err = uow.Commit()
	}
	s.metrics.RecordStoreWrite("quiz_results", err)
	if err != nil {
		return nil, fmt.Errorf("failed to record quiz result: %w", err)
	}
	return result, nil
}

func (s *knowledgeService) ListQuizResults(ctx context.Context, sessionId string) ([]*entity.QuizResult, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.QuizResultRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OldestFirst{},
	)
}
