package repos

import (
	"context"
	"github.com/google/uuid"
	"github.com/learnfinity/learnfinity-backend/internal/logger"
	"github.com/learnfinity/learnfinity-backend/internal/types"
	"gorm.io/gorm"
)

type LearningPathRepo interface {
	Create(ctx context.Context, tx *gorm.DB, paths []*types.LearningPath) ([]*types.LearningPath, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, pathIDs []uuid.UUID) ([]*types.LearningPath, error)
	GetLatestByEmployeeID(ctx context.Context, tx *gorm.DB, employeeID uuid.UUID) (*types.LearningPath, error)
}

type learningPathRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningPathRepo(db *gorm.DB, baseLog *logger.Logger) LearningPathRepo {
	repoLog := baseLog.With("repo", "LearningPathRepo")
	return &learningPathRepo{db: db, log: repoLog}
}

func (lpr *learningPathRepo) Create(ctx context.Context, tx *gorm.DB, paths []*types.LearningPath) ([]*types.LearningPath, error) {
	transaction := tx
	if transaction == nil {
		transaction = lpr.db
	}

	if len(paths) == 0 {
		return []*types.LearningPath{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&paths).Error; err != nil {
		return nil, err
	}

	return paths, nil
}

func (lpr *learningPathRepo) GetByIDs(ctx context.Context, tx *gorm.DB, pathIDs []uuid.UUID) ([]*types.LearningPath, error) {
	transaction := tx
	if transaction == nil {
		transaction = lpr.db
	}

	var results []*types.LearningPath

	if len(pathIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", pathIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (lpr *learningPathRepo) GetLatestByEmployeeID(ctx context.Context, tx *gorm.DB, employeeID uuid.UUID) (*types.LearningPath, error) {
	transaction := tx
	if transaction == nil {
		transaction = lpr.db
	}
	if employeeID == uuid.Nil {
		return nil, nil
	}

	var path types.LearningPath
	err := transaction.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Limit(1).
		Find(&path).Error
	if err != nil {
		return nil, err
	}
	if path.ID == uuid.Nil {
		return nil, nil
	}
	return &path, nil
}
