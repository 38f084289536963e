package repos

import (
	"context"
	"github.com/google/uuid"
	"github.com/learnfinity/learnfinity-backend/internal/logger"
	"github.com/learnfinity/learnfinity-backend/internal/types"
	"gorm.io/gorm"
)

type CredentialMappingRepo interface {
	Create(ctx context.Context, tx *gorm.DB, mappings []*types.CredentialMapping) ([]*types.CredentialMapping, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, mappingIDs []uuid.UUID) ([]*types.CredentialMapping, error)
	GetByOriginalEmails(ctx context.Context, tx *gorm.DB, originalEmails []string) ([]*types.CredentialMapping, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.CredentialMapping, error)
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, mappingIDs []uuid.UUID) error
}

type credentialMappingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCredentialMappingRepo(db *gorm.DB, baseLog *logger.Logger) CredentialMappingRepo {
	repoLog := baseLog.With("repo", "CredentialMappingRepo")
	return &credentialMappingRepo{db: db, log: repoLog}
}

func (cmr *credentialMappingRepo) Create(ctx context.Context, tx *gorm.DB, mappings []*types.CredentialMapping) ([]*types.CredentialMapping, error) {
	transaction := tx
	if transaction == nil {
		transaction = cmr.db
	}

	if len(mappings) == 0 {
		return []*types.CredentialMapping{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&mappings).Error; err != nil {
		return nil, err
	}

	return mappings, nil
}

func (cmr *credentialMappingRepo) GetByIDs(ctx context.Context, tx *gorm.DB, mappingIDs []uuid.UUID) ([]*types.CredentialMapping, error) {
	transaction := tx
	if transaction == nil {
		transaction = cmr.db
	}

	var results []*types.CredentialMapping

	if len(mappingIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", mappingIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (cmr *credentialMappingRepo) GetByOriginalEmails(ctx context.Context, tx *gorm.DB, originalEmails []string) ([]*types.CredentialMapping, error) {
	transaction := tx
	if transaction == nil {
		transaction = cmr.db
	}

	var results []*types.CredentialMapping

	if len(originalEmails) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("original_email IN ?", originalEmails).
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (cmr *credentialMappingRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.CredentialMapping, error) {
	transaction := tx
	if transaction == nil {
		transaction = cmr.db
	}

	var results []*types.CredentialMapping

	if err := transaction.WithContext(ctx).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (cmr *credentialMappingRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, mappingIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = cmr.db
	}

	if len(mappingIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN (?)", mappingIDs).
		Delete(&types.CredentialMapping{}).Error; err != nil {
		return err
	}

	return nil
}
