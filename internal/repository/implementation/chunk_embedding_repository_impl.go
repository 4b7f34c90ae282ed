package implementation

import (
	"context"
	"errors"
	"strings"

	"gm-shield-be/internal/entity"
	"gm-shield-be/internal/mapper"
	"gm-shield-be/internal/model"
	"gm-shield-be/internal/repository/contract"
	"gm-shield-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// undefinedTableCode is the Postgres error for a relation that does not
// exist yet. Searches against an empty installation should return no
// results instead of surfacing it.
const undefinedTableCode = "42P01"

type ChunkEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChunkEmbeddingMapper
}

func NewChunkEmbeddingRepository(db *gorm.DB) contract.ChunkEmbeddingRepository {
	return &ChunkEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewChunkEmbeddingMapper(),
	}
}

func (r *ChunkEmbeddingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == undefinedTableCode
}

func (r *ChunkEmbeddingRepositoryImpl) Create(ctx context.Context, chunk *entity.ChunkEmbedding) error {
	m := r.mapper.ToModel(chunk)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*chunk = *r.mapper.ToEntity(m)
	return nil
}

func (r *ChunkEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.ChunkEmbedding) error {
	if len(chunks) == 0 {
		return nil
	}
	models := make([]*model.ChunkEmbedding, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ToModel(c)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *ChunkEmbeddingRepositoryImpl) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.ChunkEmbedding{})
	return result.RowsAffected, result.Error
}

func (r *ChunkEmbeddingRepositoryImpl) DeleteBySourcePath(ctx context.Context, sourcePath string) (int64, error) {
	result := r.db.WithContext(ctx).Where("source_path = ?", sourcePath).Delete(&model.ChunkEmbedding{})
	return result.RowsAffected, result.Error
}

func (r *ChunkEmbeddingRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChunkEmbedding, error) {
	var m model.ChunkEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ChunkEmbeddingRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChunkEmbedding, error) {
	var models []*model.ChunkEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		if isUndefinedTable(err) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ChunkEmbeddingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Model(&model.ChunkEmbedding{}).Count(&count).Error; err != nil {
		if isUndefinedTable(err) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}

func (r *ChunkEmbeddingRepositoryImpl) FindIDsBySourcePath(ctx context.Context, sourcePath string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.ChunkEmbedding{}).
		Where("source_path = ?", sourcePath).
		Pluck("id", &ids).Error
	if err != nil {
		if isUndefinedTable(err) {
			return nil, nil
		}
		return nil, err
	}
	return ids, nil
}

func (r *ChunkEmbeddingRepositoryImpl) DistinctSourcePaths(ctx context.Context) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).
		Model(&model.ChunkEmbedding{}).
		Distinct("source_path").
		Pluck("source_path", &paths).Error
	if err != nil {
		if isUndefinedTable(err) {
			return nil, nil
		}
		return nil, err
	}
	return paths, nil
}

// SearchSimilarWithScore ranks chunks by cosine similarity.
// Cosine distance in pgvector is 1 - cosine_similarity, so the score is
// computed as 1 - (embedding_value <=> query_vector).
func (r *ChunkEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*contract.ScoredChunkEmbedding, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.ChunkEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("chunk_embeddings").
		Select("chunk_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		if isUndefinedTable(err) {
			return nil, nil
		}
		return nil, err
	}

	scored := make([]*contract.ScoredChunkEmbedding, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredChunkEmbedding{
			Chunk:      r.mapper.ToEntity(&res.ChunkEmbedding),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

func (r *ChunkEmbeddingRepositoryImpl) SearchByKeywords(ctx context.Context, keywords []string, limit int) ([]*entity.ChunkEmbedding, error) {
	if len(keywords) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	query := r.db.WithContext(ctx).Model(&model.ChunkEmbedding{})
	conditions := make([]string, len(keywords))
	args := make([]interface{}, len(keywords))
	for i, kw := range keywords {
		conditions[i] = "document ILIKE ?"
		args[i] = "%" + kw + "%"
	}
	query = query.Where(strings.Join(conditions, " OR "), args...)

	var models []*model.ChunkEmbedding
	if err := query.Limit(limit).Find(&models).Error; err != nil {
		if isUndefinedTable(err) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
