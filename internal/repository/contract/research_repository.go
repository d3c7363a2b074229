package contract

import (
	"context"

	"prime-research/internal/entity"
	"prime-research/internal/repository/specification"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	// UpdateSummary reports whether a session row was updated.
	UpdateSummary(ctx context.Context, id string, summary string) (bool, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type NodeRepository interface {
	// InsertIgnore reports whether the node was new. An existing id is left
	// untouched.
	InsertIgnore(ctx context.Context, node *entity.GraphNode) (bool, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GraphNode, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type EdgeRepository interface {
	Create(ctx context.Context, edge *entity.GraphEdge) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GraphEdge, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type QuizResultRepository interface {
	Create(ctx context.Context, result *entity.QuizResult) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QuizResult, error)
}
