package repos

import (
	"context"
	"github.com/google/uuid"
	"github.com/learnfinity/learnfinity-backend/internal/logger"
	"github.com/learnfinity/learnfinity-backend/internal/types"
	"gorm.io/gorm"
)

type EmployeeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, employees []*types.Employee) ([]*types.Employee, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, employeeIDs []uuid.UUID) ([]*types.Employee, error)
	GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.Employee, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Employee, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, employeeID uuid.UUID, fields map[string]any) error
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, employeeIDs []uuid.UUID) error
}

type employeeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEmployeeRepo(db *gorm.DB, baseLog *logger.Logger) EmployeeRepo {
	repoLog := baseLog.With("repo", "EmployeeRepo")
	return &employeeRepo{db: db, log: repoLog}
}

func (er *employeeRepo) Create(ctx context.Context, tx *gorm.DB, employees []*types.Employee) ([]*types.Employee, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	if len(employees) == 0 {
		return []*types.Employee{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&employees).Error; err != nil {
		return nil, err
	}

	return employees, nil
}

func (er *employeeRepo) GetByIDs(ctx context.Context, tx *gorm.DB, employeeIDs []uuid.UUID) ([]*types.Employee, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	var results []*types.Employee

	if len(employeeIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", employeeIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (er *employeeRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.Employee, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	var results []*types.Employee

	if len(userIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (er *employeeRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Employee, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	var results []*types.Employee

	if err := transaction.WithContext(ctx).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (er *employeeRepo) UpdateFields(ctx context.Context, tx *gorm.DB, employeeID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	if len(fields) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Employee{}).
		Where("id = ?", employeeID).
		Updates(fields).Error; err != nil {
		return err
	}

	return nil
}

func (er *employeeRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, employeeIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	if len(employeeIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN (?)", employeeIDs).
		Delete(&types.Employee{}).Error; err != nil {
		return err
	}

	return nil
}
