package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/learnfinity/learnfinity-backend/internal/logger"
	"github.com/learnfinity/learnfinity-backend/internal/normalization"
	"github.com/learnfinity/learnfinity-backend/internal/repos"
	"github.com/learnfinity/learnfinity-backend/internal/requestdata"
	"github.com/learnfinity/learnfinity-backend/internal/types"
)

type CourseService interface {
	Create(ctx context.Context, input CourseInput) (*types.Course, error)
	List(ctx context.Context) ([]*types.Course, error)
	Get(ctx context.Context, courseID uuid.UUID) (*types.Course, error)
	Update(ctx context.Context, courseID uuid.UUID, input CourseInput) (*types.Course, error)
	Delete(ctx context.Context, courseID uuid.UUID) error
}

type CourseInput struct {
	Title             string
	Description       string
	Category          string
	ContentType       string
	EstimatedDuration string
}

type courseService struct {
	db         *gorm.DB
	log        *logger.Logger
	courseRepo repos.CourseRepo
}

func NewCourseService(db *gorm.DB, baseLog *logger.Logger, courseRepo repos.CourseRepo) CourseService {
	return &courseService{
		db:         db,
		log:        baseLog.With("service", "CourseService"),
		courseRepo: courseRepo,
	}
}

func (cs *courseService) Create(ctx context.Context, input CourseInput) (*types.Course, error) {
	rd := requestdata.GetRequestData(ctx)
	if !rd.IsHRAdmin() {
		return nil, fmt.Errorf("only HR admins can create courses")
	}
	title := normalization.ParseDisplayString(input.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	now := time.Now()
	course := &types.Course{
		ID:                uuid.New(),
		Title:             title,
		Description:       strings.TrimSpace(input.Description),
		Category:          normalization.ParseDisplayString(input.Category),
		ContentType:       normalization.ParseDisplayString(input.ContentType),
		EstimatedDuration: normalization.ParseDisplayString(input.EstimatedDuration),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if _, err := cs.courseRepo.Create(ctx, nil, []*types.Course{course}); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return course, nil
}

// List is readable by any authenticated user; the catalog is not sensitive.
func (cs *courseService) List(ctx context.Context) ([]*types.Course, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("not authenticated")
	}
	return cs.courseRepo.List(ctx, nil)
}

func (cs *courseService) Get(ctx context.Context, courseID uuid.UUID) (*types.Course, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("not authenticated")
	}
	if courseID == uuid.Nil {
		return nil, fmt.Errorf("missing course id")
	}
	courses, err := cs.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 || courses[0] == nil {
		return nil, fmt.Errorf("course not found")
	}
	return courses[0], nil
}

func (cs *courseService) Update(ctx context.Context, courseID uuid.UUID, input CourseInput) (*types.Course, error) {
	rd := requestdata.GetRequestData(ctx)
	if !rd.IsHRAdmin() {
		return nil, fmt.Errorf("only HR admins can update courses")
	}

	course, err := cs.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if v := normalization.ParseDisplayString(input.Title); v != "" {
		fields["title"] = v
		course.Title = v
	}
	if v := strings.TrimSpace(input.Description); v != "" {
		fields["description"] = v
		course.Description = v
	}
	if v := normalization.ParseDisplayString(input.Category); v != "" {
		fields["category"] = v
		course.Category = v
	}
	if v := normalization.ParseDisplayString(input.ContentType); v != "" {
		fields["content_type"] = v
		course.ContentType = v
	}
	if v := normalization.ParseDisplayString(input.EstimatedDuration); v != "" {
		fields["estimated_duration"] = v
		course.EstimatedDuration = v
	}
	if len(fields) == 0 {
		return course, nil
	}
	fields["updated_at"] = time.Now()

	if err := cs.courseRepo.UpdateFields(ctx, nil, courseID, fields); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	return course, nil
}

func (cs *courseService) Delete(ctx context.Context, courseID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if !rd.IsHRAdmin() {
		return fmt.Errorf("only HR admins can delete courses")
	}
	if courseID == uuid.Nil {
		return fmt.Errorf("missing course id")
	}
	return cs.courseRepo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{courseID})
}
