package implementation

import (
	"context"
	"errors"

	"gm-shield-be/internal/entity"
	"gm-shield-be/internal/mapper"
	"gm-shield-be/internal/model"
	"gm-shield-be/internal/repository/contract"
	"gm-shield-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type KnowledgeSourceRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KnowledgeSourceMapper
}

func NewKnowledgeSourceRepository(db *gorm.DB) contract.KnowledgeSourceRepository {
	return &KnowledgeSourceRepositoryImpl{
		db:     db,
		mapper: mapper.NewKnowledgeSourceMapper(),
	}
}

func (r *KnowledgeSourceRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *KnowledgeSourceRepositoryImpl) Create(ctx context.Context, source *entity.KnowledgeSource) error {
	m := r.mapper.ToModel(source)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*source = *r.mapper.ToEntity(m)
	return nil
}

func (r *KnowledgeSourceRepositoryImpl) Update(ctx context.Context, source *entity.KnowledgeSource) error {
	m := r.mapper.ToModel(source)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*source = *r.mapper.ToEntity(m)
	return nil
}

func (r *KnowledgeSourceRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.KnowledgeSource{}, id).Error
}

func (r *KnowledgeSourceRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgeSource, error) {
	var m model.KnowledgeSource
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *KnowledgeSourceRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeSource, error) {
	var models []*model.KnowledgeSource
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *KnowledgeSourceRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.KnowledgeSource{}).Count(&count).Error
	return count, err
}

// UpdateRunState writes progress fields guarded by the run generation.
// A refresh bumps run_generation, so writes from the superseded run
// match zero rows and are silently discarded.
func (r *KnowledgeSourceRepositoryImpl) UpdateRunState(ctx context.Context, id uuid.UUID, generation int, fields map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.KnowledgeSource{}).
		Where("id = ? AND run_generation = ?", id, generation).
		Updates(fields)
	return result.RowsAffected, result.Error
}
