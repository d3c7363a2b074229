package implementation

import (
	"context"
	"errors"

	"prime-research/internal/entity"
	"prime-research/internal/mapper"
	"prime-research/internal/model"
	"prime-research/internal/repository/contract"
	"prime-research/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

type SessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ResearchMapper
}

func NewSessionRepository(db *gorm.DB) contract.SessionRepository {
	return &SessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewResearchMapper(),
	}
}

func (r *SessionRepositoryImpl) Create(ctx context.Context, session *entity.Session) error {
	m := r.mapper.SessionToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.SessionToEntity(m)
	return nil
}

func (r *SessionRepositoryImpl) UpdateSummary(ctx context.Context, id string, summary string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ?", id).
		Update("summary", summary)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *SessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error) {
	var m model.Session
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SessionToEntity(&m), nil
}

func (r *SessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error) {
	var models []*model.Session
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.SessionsToEntities(models), nil
}

func (r *SessionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.Session{}).Count(&count).Error
	return count, err
}

type NodeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ResearchMapper
}

func NewNodeRepository(db *gorm.DB) contract.NodeRepository {
	return &NodeRepositoryImpl{
		db:     db,
		mapper: mapper.NewResearchMapper(),
	}
}

func (r *NodeRepositoryImpl) InsertIgnore(ctx context.Context, node *entity.GraphNode) (bool, error) {
	m := r.mapper.NodeToModel(node)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(m)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *NodeRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GraphNode, error) {
	var models []*model.GraphNode
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.GraphNode, len(models))
	for i, m := range models {
		entities[i] = r.mapper.NodeToEntity(m)
	}
	return entities, nil
}

func (r *NodeRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.GraphNode{}).Count(&count).Error
	return count, err
}

type EdgeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ResearchMapper
}

func NewEdgeRepository(db *gorm.DB) contract.EdgeRepository {
	return &EdgeRepositoryImpl{
		db:     db,
		mapper: mapper.NewResearchMapper(),
	}
}

func (r *EdgeRepositoryImpl) Create(ctx context.Context, edge *entity.GraphEdge) error {
	m := r.mapper.EdgeToModel(edge)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*edge = *r.mapper.EdgeToEntity(m)
	return nil
}

func (r *EdgeRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GraphEdge, error) {
	var models []*model.GraphEdge
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.GraphEdge, len(models))
	for i, m := range models {
		entities[i] = r.mapper.EdgeToEntity(m)
	}
	return entities, nil
}

func (r *EdgeRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.GraphEdge{}).Count(&count).Error
	return count, err
}

type QuizResultRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ResearchMapper
}

func NewQuizResultRepository(db *gorm.DB) contract.QuizResultRepository {
	return &QuizResultRepositoryImpl{
		db:     db,
		mapper: mapper.NewResearchMapper(),
	}
}

func (r *QuizResultRepositoryImpl) Create(ctx context.Context, result *entity.QuizResult) error {
	m := r.mapper.QuizResultToModel(result)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*result = *r.mapper.QuizResultToEntity(m)
	return nil
}

func (r *QuizResultRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QuizResult, error) {
	var models []*model.QuizResult
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.QuizResult, len(models))
	for i, m := range models {
		entities[i] = r.mapper.QuizResultToEntity(m)
	}
	return entities, nil
}
