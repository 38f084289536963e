package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/learnfinity/learnfinity-backend/internal/logger"
	"github.com/learnfinity/learnfinity-backend/internal/types"
)

type EnrollmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, enrollments []*types.Enrollment) ([]*types.Enrollment, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, enrollmentIDs []uuid.UUID) ([]*types.Enrollment, error)
	GetByEmployeeIDs(ctx context.Context, tx *gorm.DB, employeeIDs []uuid.UUID) ([]*types.Enrollment, error)
	GetByEmployeeAndCourse(ctx context.Context, tx *gorm.DB, employeeID, courseID uuid.UUID) (*types.Enrollment, error)

	// ClaimNextPending picks one enrollment runnable by the personalization
	// worker and atomically marks it in_progress. Runnable means pending,
	// failed-but-retryable, or in_progress with a stale heartbeat.
	ClaimNextPending(ctx context.Context, tx *gorm.DB, maxAttempts int, retryDelay time.Duration, staleRunning time.Duration) (*types.Enrollment, error)

	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	Heartbeat(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type enrollmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	repoLog := baseLog.With("repo", "EnrollmentRepo")
	return &enrollmentRepo{db: db, log: repoLog}
}

func (r *enrollmentRepo) Create(ctx context.Context, tx *gorm.DB, enrollments []*types.Enrollment) ([]*types.Enrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(enrollments) == 0 {
		return []*types.Enrollment{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, enrollmentIDs []uuid.UUID) ([]*types.Enrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Enrollment
	if len(enrollmentIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", enrollmentIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *enrollmentRepo) GetByEmployeeIDs(ctx context.Context, tx *gorm.DB, employeeIDs []uuid.UUID) ([]*types.Enrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Enrollment
	if len(employeeIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("employee_id IN ?", employeeIDs).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *enrollmentRepo) GetByEmployeeAndCourse(ctx context.Context, tx *gorm.DB, employeeID, courseID uuid.UUID) (*types.Enrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if employeeID == uuid.Nil || courseID == uuid.Nil {
		return nil, nil
	}

	var enrollment types.Enrollment
	err := transaction.WithContext(ctx).
		Where("employee_id = ? AND course_id = ?", employeeID, courseID).
		Order("created_at DESC").
		Limit(1).
		Find(&enrollment).Error
	if err != nil {
		return nil, err
	}
	if enrollment.ID == uuid.Nil {
		return nil, nil
	}
	return &enrollment, nil
}

func (r *enrollmentRepo) ClaimNextPending(
	ctx context.Context,
	tx *gorm.DB,
	maxAttempts int,
	retryDelay time.Duration,
	staleRunning time.Duration,
) (*types.Enrollment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	now := time.Now()
	retryCutoff := now.Add(-retryDelay)
	staleCutoff := now.Add(-staleRunning)

	var claimed *types.Enrollment

	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		var enrollment types.Enrollment

		q := txx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where(`
        (
          generation_status = ?
          OR (
            generation_status = ?
            AND attempts < ?
            AND (last_error_at IS NULL OR last_error_at < ?)
          )
          OR (
            generation_status = ?
            AND heartbeat_at IS NOT NULL
            AND heartbeat_at < ?
          )
        )
      `, types.GenerationStatusPending, types.GenerationStatusFailed, maxAttempts, retryCutoff, types.GenerationStatusInProgress, staleCutoff).
			Order("created_at ASC")

		qErr := q.First(&enrollment).Error
		if errors.Is(qErr, gorm.ErrRecordNotFound) {
			return nil
		}
		if qErr != nil {
			return qErr
		}

		// Claim it: mark in_progress, increment attempts, set lock/heartbeat.
		uErr := txx.Model(&types.Enrollment{}).
			Where("id = ?", enrollment.ID).
			Updates(map[string]interface{}{
				"generation_status":     types.GenerationStatusInProgress,
				"generation_started_at": now,
				"attempts":              gorm.Expr("attempts + 1"),
				"locked_at":             now,
				"heartbeat_at":          now,
				"updated_at":            now,
			}).Error
		if uErr != nil {
			return uErr
		}

		claimed = &enrollment
		return nil
	})

	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *enrollmentRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(ctx).
		Model(&types.Enrollment{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *enrollmentRepo) Heartbeat(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	now := time.Now()
	return transaction.WithContext(ctx).
		Model(&types.Enrollment{}).
		Where("id = ? AND generation_status = ?", id, types.GenerationStatusInProgress).
		Updates(map[string]interface{}{
			"heartbeat_at": now,
			"updated_at":   now,
		}).Error
}
