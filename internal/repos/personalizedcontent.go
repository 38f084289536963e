package repos

import (
	"context"
	"github.com/google/uuid"
	"github.com/learnfinity/learnfinity-backend/internal/logger"
	"github.com/learnfinity/learnfinity-backend/internal/types"
	"gorm.io/gorm"
)

type PersonalizedContentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, contents []*types.PersonalizedContent) ([]*types.PersonalizedContent, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, contentIDs []uuid.UUID) ([]*types.PersonalizedContent, error)
	GetByEnrollmentIDs(ctx context.Context, tx *gorm.DB, enrollmentIDs []uuid.UUID) ([]*types.PersonalizedContent, error)
}

type personalizedContentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPersonalizedContentRepo(db *gorm.DB, baseLog *logger.Logger) PersonalizedContentRepo {
	repoLog := baseLog.With("repo", "PersonalizedContentRepo")
	return &personalizedContentRepo{db: db, log: repoLog}
}

func (pcr *personalizedContentRepo) Create(ctx context.Context, tx *gorm.DB, contents []*types.PersonalizedContent) ([]*types.PersonalizedContent, error) {
	transaction := tx
	if transaction == nil {
		transaction = pcr.db
	}

	if len(contents) == 0 {
		return []*types.PersonalizedContent{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&contents).Error; err != nil {
		return nil, err
	}

	return contents, nil
}

func (pcr *personalizedContentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, contentIDs []uuid.UUID) ([]*types.PersonalizedContent, error) {
	transaction := tx
	if transaction == nil {
		transaction = pcr.db
	}

	var results []*types.PersonalizedContent

	if len(contentIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", contentIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (pcr *personalizedContentRepo) GetByEnrollmentIDs(ctx context.Context, tx *gorm.DB, enrollmentIDs []uuid.UUID) ([]*types.PersonalizedContent, error) {
	transaction := tx
	if transaction == nil {
		transaction = pcr.db
	}

	var results []*types.PersonalizedContent

	if len(enrollmentIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("enrollment_id IN ?", enrollmentIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}
