package mapper

import (
	"prime-research/internal/entity"
	"prime-research/internal/model"
)

type ResearchMapper struct{}

func NewResearchMapper() *ResearchMapper {
	return &ResearchMapper{}
}

func (m *ResearchMapper) SessionToEntity(s *model.Session) *entity.Session {
	if s == nil {
		return nil
	}
	return &entity.Session{
		Id:        s.Id,
		Topic:     s.Topic,
		Depth:     s.Depth,
		Summary:   s.Summary,
		CreatedAt: s.Timestamp,
	}
}

func (m *ResearchMapper) SessionToModel(s *entity.Session) *model.Session {
	if s == nil {
		return nil
	}
	return &model.Session{
		Id:        s.Id,
		Topic:     s.Topic,
		Depth:     s.Depth,
		Summary:   s.Summary,
		Timestamp: s.CreatedAt,
	}
}

func (m *ResearchMapper) SessionsToEntities(sessions []*model.Session) []*entity.Session {
	entities := make([]*entity.Session, len(sessions))
	for i, s := range sessions {
		entities[i] = m.SessionToEntity(s)
	}
	return entities
}

func (m *ResearchMapper) NodeToEntity(n *model.GraphNode) *entity.GraphNode {
	if n == nil {
		return nil
	}
	return &entity.GraphNode{
		Id:       n.Id,
		Label:    n.Label,
		Type:     n.Type,
		Metadata: n.Metadata,
	}
}

func (m *ResearchMapper) NodeToModel(n *entity.GraphNode) *model.GraphNode {
	if n == nil {
		return nil
	}
	return &model.GraphNode{
		Id:       n.Id,
		Label:    n.Label,
		Type:     n.Type,
		Metadata: n.Metadata,
	}
}

func (m *ResearchMapper) EdgeToEntity(e *model.GraphEdge) *entity.GraphEdge {
	if e == nil {
		return nil
	}
	return &entity.GraphEdge{
		Id:       e.Id,
		SourceId: e.SourceId,
		TargetId: e.TargetId,
		Relation: e.Relation,
		Metadata: e.Metadata,
	}
}

func (m *ResearchMapper) EdgeToModel(e *entity.GraphEdge) *model.GraphEdge {
	if e == nil {
		return nil
	}
	return &model.GraphEdge{
		Id:       e.Id,
		SourceId: e.SourceId,
		TargetId: e.TargetId,
		Relation: e.Relation,
		Metadata: e.Metadata,
	}
}

func (m *ResearchMapper) QuizResultToEntity(q *model.QuizResult) *entity.QuizResult {
	if q == nil {
		return nil
	}
	return &entity.QuizResult{
		Id:             q.Id,
		SessionId:      q.SessionId,
		Score:          q.Score,
		TotalQuestions: q.TotalQuestions,
		CreatedAt:      q.Timestamp,
	}
}

func (m *ResearchMapper) QuizResultToModel(q *entity.QuizResult) *model.QuizResult {
	if q == nil {
		return nil
	}
	return &model.QuizResult{
		Id:             q.Id,
		SessionId:      q.SessionId,
		Score:          q.Score,
		TotalQuestions: q.TotalQuestions,
		Timestamp:      q.CreatedAt,
	}
}
