package unitofwork

import (
	"context"

	"prime-research/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SessionRepository() contract.SessionRepository
	NodeRepository() contract.NodeRepository
	EdgeRepository() contract.EdgeRepository
	QuizResultRepository() contract.QuizResultRepository
}
