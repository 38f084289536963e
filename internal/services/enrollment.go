package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/learnfinity/learnfinity-backend/internal/logger"
	"github.com/learnfinity/learnfinity-backend/internal/repos"
	"github.com/learnfinity/learnfinity-backend/internal/requestdata"
	"github.com/learnfinity/learnfinity-backend/internal/sse"
	"github.com/learnfinity/learnfinity-backend/internal/types"
)

type EnrollmentService interface {
	AssignCourse(ctx context.Context, employeeID, courseID uuid.UUID, generationStatus string) (*types.Enrollment, error)
	ChangeCourse(ctx context.Context, enrollmentID, courseID uuid.UUID) (*types.Enrollment, error)
	ListForEmployee(ctx context.Context, employeeID uuid.UUID) ([]*types.Enrollment, error)
	ListForCurrentUser(ctx context.Context) ([]*types.Enrollment, error)
	GetStatus(ctx context.Context, enrollmentID uuid.UUID) (*types.Enrollment, error)
	GetContent(ctx context.Context, enrollmentID uuid.UUID) (*types.PersonalizedContent, error)
	RequestRegeneration(ctx context.Context, enrollmentID uuid.UUID) (*types.Enrollment, error)
}

type enrollmentService struct {
	db             *gorm.DB
	log            *logger.Logger
	emitter        SSEEmitter
	enrollmentRepo repos.EnrollmentRepo
	employeeRepo   repos.EmployeeRepo
	courseRepo     repos.CourseRepo
	contentRepo    repos.PersonalizedContentRepo
}

func NewEnrollmentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	emitter SSEEmitter,
	enrollmentRepo repos.EnrollmentRepo,
	employeeRepo repos.EmployeeRepo,
	courseRepo repos.CourseRepo,
	contentRepo repos.PersonalizedContentRepo,
) EnrollmentService {
	return &enrollmentService{
		db:             db,
		log:            baseLog.With("service", "EnrollmentService"),
		emitter:        emitter,
		enrollmentRepo: enrollmentRepo,
		employeeRepo:   employeeRepo,
		courseRepo:     courseRepo,
		contentRepo:    contentRepo,
	}
}

// AssignCourse creates the enrollment row. The generation status default is
// applied here, on the insert path, so it is visible and unit-testable rather
// than hidden in a database trigger: absent status becomes pending, an
// explicit caller-supplied status is left untouched.
func (es *enrollmentService) AssignCourse(ctx context.Context, employeeID, courseID uuid.UUID, generationStatus string) (*types.Enrollment, error) {
	rd := requestdata.GetRequestData(ctx)
	if !rd.IsHRAdmin() {
		return nil, fmt.Errorf("only HR admins can assign courses")
	}
	if employeeID == uuid.Nil || courseID == uuid.Nil {
		return nil, fmt.Errorf("missing employee or course id")
	}

	var enrollment *types.Enrollment
	err := es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		employees, err := es.employeeRepo.GetByIDs(ctx, tx, []uuid.UUID{employeeID})
		if err != nil {
			return fmt.Errorf("load employee: %w", err)
		}
		if len(employees) == 0 || employees[0] == nil {
			return fmt.Errorf("employee not found")
		}
		courses, err := es.courseRepo.GetByIDs(ctx, tx, []uuid.UUID{courseID})
		if err != nil {
			return fmt.Errorf("load course: %w", err)
		}
		if len(courses) == 0 || courses[0] == nil {
			return fmt.Errorf("course not found")
		}

		existing, err := es.enrollmentRepo.GetByEmployeeAndCourse(ctx, tx, employeeID, courseID)
		if err != nil {
			return fmt.Errorf("check existing enrollment: %w", err)
		}
		if existing != nil {
			return fmt.Errorf("employee is already enrolled in this course")
		}

		now := time.Now()
		enrollment = &types.Enrollment{
			ID:               uuid.New(),
			EmployeeID:       employeeID,
			CourseID:         courseID,
			Status:           types.EnrollmentStatusAssigned,
			GenerationStatus: generationStatus,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		types.ApplyGenerationDefaults(enrollment)

		if _, err := es.enrollmentRepo.Create(ctx, tx, []*types.Enrollment{enrollment}); err != nil {
			return fmt.Errorf("create enrollment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	es.broadcast(enrollment, sse.SSEEventEnrollmentCreated)
	return enrollment, nil
}

// ChangeCourse repoints an enrollment at a different course. Rows that never
// got a generation status (created before the column existed, or through a
// path that bypassed the default) pick up the pending default here; rows with
// a status keep it.
func (es *enrollmentService) ChangeCourse(ctx context.Context, enrollmentID, courseID uuid.UUID) (*types.Enrollment, error) {
	rd := requestdata.GetRequestData(ctx)
	if !rd.IsHRAdmin() {
		return nil, fmt.Errorf("only HR admins can change enrollments")
	}
	if enrollmentID == uuid.Nil || courseID == uuid.Nil {
		return nil, fmt.Errorf("missing enrollment or course id")
	}

	var updated *types.Enrollment
	err := es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enrollments, err := es.enrollmentRepo.GetByIDs(ctx, tx, []uuid.UUID{enrollmentID})
		if err != nil {
			return fmt.Errorf("load enrollment: %w", err)
		}
		if len(enrollments) == 0 || enrollments[0] == nil {
			return fmt.Errorf("enrollment not found")
		}
		courses, err := es.courseRepo.GetByIDs(ctx, tx, []uuid.UUID{courseID})
		if err != nil {
			return fmt.Errorf("load course: %w", err)
		}
		if len(courses) == 0 || courses[0] == nil {
			return fmt.Errorf("course not found")
		}

		prev := enrollments[0]
		next := *prev
		next.CourseID = courseID
		types.ReapplyGenerationDefaultOnUpdate(prev, &next)

		updates := map[string]interface{}{
			"course_id":             next.CourseID,
			"generation_status":     next.GenerationStatus,
			"generation_started_at": next.GenerationStartedAt,
		}
		if err := es.enrollmentRepo.UpdateFields(ctx, tx, prev.ID, updates); err != nil {
			return fmt.Errorf("update enrollment: %w", err)
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (es *enrollmentService) ListForEmployee(ctx context.Context, employeeID uuid.UUID) ([]*types.Enrollment, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("not authenticated")
	}
	if employeeID == uuid.Nil {
		return nil, fmt.Errorf("missing employee id")
	}
	if !rd.IsHRAdmin() {
		owned, err := es.employeeForUser(ctx, rd.UserID)
		if err != nil {
			return nil, err
		}
		if owned == nil || owned.ID != employeeID {
			return nil, fmt.Errorf("enrollments not found")
		}
	}
	return es.enrollmentRepo.GetByEmployeeIDs(ctx, nil, []uuid.UUID{employeeID})
}

func (es *enrollmentService) ListForCurrentUser(ctx context.Context) ([]*types.Enrollment, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("not authenticated")
	}
	employee, err := es.employeeForUser(ctx, rd.UserID)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return []*types.Enrollment{}, nil
	}
	return es.enrollmentRepo.GetByEmployeeIDs(ctx, nil, []uuid.UUID{employee.ID})
}

// GetStatus is the dashboard's read path: the enrollment row including its
// generation status. Unknown status labels are the consumer's problem to
// render; this layer returns them verbatim.
func (es *enrollmentService) GetStatus(ctx context.Context, enrollmentID uuid.UUID) (*types.Enrollment, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("not authenticated")
	}
	if enrollmentID == uuid.Nil {
		return nil, fmt.Errorf("missing enrollment id")
	}

	enrollments, err := es.enrollmentRepo.GetByIDs(ctx, nil, []uuid.UUID{enrollmentID})
	if err != nil {
		return nil, err
	}
	if len(enrollments) == 0 || enrollments[0] == nil {
		return nil, fmt.Errorf("enrollment not found")
	}
	enrollment := enrollments[0]

	if !rd.IsHRAdmin() {
		owned, err := es.employeeForUser(ctx, rd.UserID)
		if err != nil {
			return nil, err
		}
		if owned == nil || owned.ID != enrollment.EmployeeID {
			return nil, fmt.Errorf("enrollment not found")
		}
	}
	return enrollment, nil
}

func (es *enrollmentService) GetContent(ctx context.Context, enrollmentID uuid.UUID) (*types.PersonalizedContent, error) {
	enrollment, err := es.GetStatus(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.GenerationStatus != types.GenerationStatusCompleted || enrollment.PersonalizedContentID == nil {
		return nil, fmt.Errorf("personalized content not generated yet")
	}
	contents, err := es.contentRepo.GetByIDs(ctx, nil, []uuid.UUID{*enrollment.PersonalizedContentID})
	if err != nil {
		return nil, err
	}
	if len(contents) == 0 || contents[0] == nil {
		return nil, fmt.Errorf("personalized content not found")
	}
	return contents[0], nil
}

// RequestRegeneration is the only path back to pending. A terminal enrollment
// (completed or failed) is reset for a fresh generation attempt; an enrollment
// still pending or in progress is left alone.
func (es *enrollmentService) RequestRegeneration(ctx context.Context, enrollmentID uuid.UUID) (*types.Enrollment, error) {
	enrollment, err := es.GetStatus(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	switch enrollment.GenerationStatus {
	case types.GenerationStatusCompleted, types.GenerationStatusFailed:
	default:
		return nil, fmt.Errorf("generation is already %s", enrollment.GenerationStatus)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"generation_status":       types.GenerationStatusPending,
		"generation_started_at":   nil,
		"generation_completed_at": nil,
		"personalized_content_id": nil,
		"attempts":                0,
		"error":                   "",
		"last_error_at":           nil,
		"locked_at":               nil,
		"heartbeat_at":            nil,
		"updated_at":              now,
	}
	if err := es.enrollmentRepo.UpdateFields(ctx, nil, enrollment.ID, updates); err != nil {
		return nil, fmt.Errorf("reset enrollment for regeneration: %w", err)
	}

	enrollment.GenerationStatus = types.GenerationStatusPending
	enrollment.GenerationStartedAt = nil
	enrollment.GenerationCompletedAt = nil
	enrollment.PersonalizedContentID = nil
	enrollment.Attempts = 0
	enrollment.Error = ""
	enrollment.UpdatedAt = now

	es.broadcast(enrollment, sse.SSEEventGenerationQueued)
	return enrollment, nil
}

func (es *enrollmentService) employeeForUser(ctx context.Context, userID uuid.UUID) (*types.Employee, error) {
	employees, err := es.employeeRepo.GetByUserIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("load employee for user: %w", err)
	}
	if len(employees) == 0 {
		return nil, nil
	}
	return employees[0], nil
}

func (es *enrollmentService) broadcast(enrollment *types.Enrollment, event sse.SSEEvent) {
	if es.emitter == nil || enrollment == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	es.emitter.Emit(ctx, sse.SSEMessage{
		Channel: enrollment.EmployeeID.String(),
		Event:   event,
		Data: map[string]any{
			"enrollment_id":     enrollment.ID,
			"course_id":         enrollment.CourseID,
			"generation_status": enrollment.GenerationStatus,
		},
	})
}
