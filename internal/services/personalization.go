package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/learnfinity/learnfinity-backend/internal/logger"
	"github.com/learnfinity/learnfinity-backend/internal/repos"
	"github.com/learnfinity/learnfinity-backend/internal/sse"
	"github.com/learnfinity/learnfinity-backend/internal/types"
	"github.com/learnfinity/learnfinity-backend/internal/utils"
)

type PersonalizationService interface {
	StartWorker(ctx context.Context)
	ProcessEnrollment(ctx context.Context, enrollment *types.Enrollment)
}

type personalizationService struct {
	db         *gorm.DB
	log        *logger.Logger
	groq       GroqClient
	emitter    SSEEmitter
	modelLabel string

	enrollmentRepo repos.EnrollmentRepo
	employeeRepo   repos.EmployeeRepo
	courseRepo     repos.CourseRepo
	contentRepo    repos.PersonalizedContentRepo
	pathRepo       repos.LearningPathRepo
}

func NewPersonalizationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	groq GroqClient,
	emitter SSEEmitter,
	enrollmentRepo repos.EnrollmentRepo,
	employeeRepo repos.EmployeeRepo,
	courseRepo repos.CourseRepo,
	contentRepo repos.PersonalizedContentRepo,
	pathRepo repos.LearningPathRepo,
) PersonalizationService {
	return &personalizationService{
		db:             db,
		log:            baseLog.With("service", "PersonalizationService"),
		groq:           groq,
		modelLabel:     utils.GetEnv("GROQ_MODEL", "llama-3.1-70b-versatile", baseLog),
		emitter:        emitter,
		enrollmentRepo: enrollmentRepo,
		employeeRepo:   employeeRepo,
		courseRepo:     courseRepo,
		contentRepo:    contentRepo,
		pathRepo:       pathRepo,
	}
}

func (ps *personalizationService) StartWorker(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()

		// Worker policy
		const maxAttempts = 5
		retryDelay := 30 * time.Second
		staleRunning := 2 * time.Minute

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				enrollment, err := ps.enrollmentRepo.ClaimNextPending(ctx, ps.db, maxAttempts, retryDelay, staleRunning)
				if err != nil {
					ps.log.Warn("ClaimNextPending failed", "error", err)
					continue
				}
				if enrollment == nil {
					continue
				}
				ps.ProcessEnrollment(ctx, enrollment)
			}
		}
	}()
}

// ProcessEnrollment runs one claimed enrollment through profile, learning
// path, and personalized content generation. The claim already moved the row
// to in_progress; this either lands it on completed or failed.
func (ps *personalizationService) ProcessEnrollment(ctx context.Context, enrollment *types.Enrollment) {
	enrollmentID := enrollment.ID
	employeeID := enrollment.EmployeeID

	fail := func(stage string, err error) {
		now := time.Now()
		_ = ps.enrollmentRepo.UpdateFields(ctx, nil, enrollmentID, map[string]any{
			"generation_status": types.GenerationStatusFailed,
			"error":             fmt.Sprintf("%s: %s", stage, err.Error()),
			"last_error_at":     now,
			"locked_at":         nil,
			"updated_at":        now,
		})
		ps.broadcast(employeeID, sse.SSEEventGenerationFailed, map[string]any{
			"enrollment_id": enrollmentID,
			"stage":         stage,
			"error":         err.Error(),
		})
		ps.log.Warn("Personalization failed", "enrollment_id", enrollmentID, "stage", stage, "error", err)
	}

	progress := func(stage string, pct int, msg string) {
		_ = ps.enrollmentRepo.Heartbeat(ctx, nil, enrollmentID)
		ps.broadcast(employeeID, sse.SSEEventGenerationProgress, map[string]any{
			"enrollment_id": enrollmentID,
			"stage":         stage,
			"progress":      pct,
			"message":       msg,
		})
	}

	employees, err := ps.employeeRepo.GetByIDs(ctx, nil, []uuid.UUID{employeeID})
	if err != nil {
		fail("load", fmt.Errorf("load employee: %w", err))
		return
	}
	if len(employees) == 0 || employees[0] == nil {
		fail("load", fmt.Errorf("employee not found"))
		return
	}
	employee := employees[0]

	courses, err := ps.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{enrollment.CourseID})
	if err != nil {
		fail("load", fmt.Errorf("load course: %w", err))
		return
	}
	if len(courses) == 0 || courses[0] == nil {
		fail("load", fmt.Errorf("course not found"))
		return
	}
	course := courses[0]

	// 1) PROFILE (idempotent): an employee profiled on a previous enrollment
	// keeps that profile.
	var profile map[string]any
	if len(employee.Profile) > 0 {
		if err := json.Unmarshal(employee.Profile, &profile); err != nil {
			ps.log.Warn("Stored employee profile unreadable; regenerating", "employee_id", employeeID, "error", err)
			profile = nil
		}
	}
	if profile == nil {
		progress("profile", 10, "Building employee profile")
		profile, err = ps.generateProfile(ctx, employee)
		if err != nil {
			fail("profile", err)
			return
		}
		raw, mErr := json.Marshal(profile)
		if mErr != nil {
			fail("profile", fmt.Errorf("encode profile: %w", mErr))
			return
		}
		now := time.Now()
		if err := ps.employeeRepo.UpdateFields(ctx, nil, employeeID, map[string]any{
			"profile":          datatypes.JSON(raw),
			"profile_built_at": now,
			"updated_at":       now,
		}); err != nil {
			fail("profile", fmt.Errorf("save profile: %w", err))
			return
		}
	}

	// 2) LEARNING PATH + PERSONALIZED CONTENT: both depend only on the profile,
	// so they run concurrently.
	progress("generate", 40, "Generating learning path and course content")

	var (
		pathDoc    map[string]any
		contentDoc map[string]any
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		existing, err := ps.pathRepo.GetLatestByEmployeeID(gctx, nil, employeeID)
		if err != nil {
			return fmt.Errorf("load learning path: %w", err)
		}
		if existing != nil {
			return nil
		}
		doc, err := ps.generateLearningPath(gctx, profile)
		if err != nil {
			return fmt.Errorf("learning path: %w", err)
		}
		pathDoc = doc
		return nil
	})
	g.Go(func() error {
		doc, err := ps.generateCourseContent(gctx, profile, course)
		if err != nil {
			return fmt.Errorf("course content: %w", err)
		}
		contentDoc = doc
		return nil
	})
	if err := g.Wait(); err != nil {
		fail("generate", err)
		return
	}

	progress("persist", 80, "Saving generated artifacts")

	contentRaw, err := json.Marshal(contentDoc)
	if err != nil {
		fail("persist", fmt.Errorf("encode content: %w", err))
		return
	}

	var contentID uuid.UUID
	err = ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if pathDoc != nil {
			pathRaw, mErr := json.Marshal(pathDoc)
			if mErr != nil {
				return fmt.Errorf("encode learning path: %w", mErr)
			}
			path := &types.LearningPath{
				ID:         uuid.New(),
				EmployeeID: employeeID,
				Path:       datatypes.JSON(pathRaw),
				Model:      ps.modelLabel,
			}
			if _, err := ps.pathRepo.Create(ctx, tx, []*types.LearningPath{path}); err != nil {
				return fmt.Errorf("create learning path: %w", err)
			}
			if err := ps.employeeRepo.UpdateFields(ctx, tx, employeeID, map[string]any{
				"learning_path_id": path.ID,
			}); err != nil {
				return fmt.Errorf("link learning path: %w", err)
			}
		}

		content := &types.PersonalizedContent{
			ID:           uuid.New(),
			EnrollmentID: enrollmentID,
			EmployeeID:   employeeID,
			CourseID:     course.ID,
			Content:      datatypes.JSON(contentRaw),
			Model:        ps.modelLabel,
		}
		if _, err := ps.contentRepo.Create(ctx, tx, []*types.PersonalizedContent{content}); err != nil {
			return fmt.Errorf("create personalized content: %w", err)
		}
		contentID = content.ID

		now := time.Now()
		return ps.enrollmentRepo.UpdateFields(ctx, tx, enrollmentID, map[string]any{
			"generation_status":       types.GenerationStatusCompleted,
			"generation_completed_at": now,
			"personalized_content_id": contentID,
			"error":                   "",
			"locked_at":               nil,
			"updated_at":              now,
		})
	})
	if err != nil {
		fail("persist", err)
		return
	}

	ps.broadcast(employeeID, sse.SSEEventGenerationCompleted, map[string]any{
		"enrollment_id":           enrollmentID,
		"course_id":               course.ID,
		"personalized_content_id": contentID,
	})
	ps.log.Info("Personalization completed", "enrollment_id", enrollmentID, "employee_id", employeeID)
}

func (ps *personalizationService) generateProfile(ctx context.Context, employee *types.Employee) (map[string]any, error) {
	system := "You are an HR learning specialist who builds employee profiles for a corporate learning platform. Always answer with a single JSON object."
	user := fmt.Sprintf(`Create a comprehensive employee profile based on the following information:

Name: %s
Role: %s
Department: %s
Experience Level: %s

Additional information (if available):
%s

The profile JSON must include:
1. "background": a summary of the employee's professional background
2. "skill_level": an assessment of their likely skill level based on role and experience
3. "learning_areas": recommended learning areas based on role and department
4. "learning_styles": preferred learning styles, if the information allows
5. "time_availability": estimated time availability for learning, if the information allows

Go beyond the provided information to build a useful picture of the employee's learning needs.`,
		employee.Name, employee.Role, employee.Department, orUnknown(employee.Experience), employee.AdditionalInfo)

	return ps.groq.GenerateJSON(ctx, system, user)
}

func (ps *personalizationService) generateLearningPath(ctx context.Context, profile map[string]any) (map[string]any, error) {
	profileRaw, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("encode profile for prompt: %w", err)
	}

	system := "You are an HR learning specialist who designs personalized learning paths. Always answer with a single JSON object."
	user := fmt.Sprintf(`Create a personalized learning path for an employee with the following profile:

%s

The learning path JSON must contain a "courses" array of 3 to 5 recommended courses, in the sequence they should be taken. For each course provide:
- "title"
- "description"
- "objectives": learning objectives
- "estimated_duration"
- "relevance": how the course contributes to their role and career development
- "content_type": video, reading, interactive, etc.

Tailor the path to the employee's role, experience level, and career trajectory, and respect their learning preferences and time availability where the profile specifies them.`, string(profileRaw))

	return ps.groq.GenerateJSON(ctx, system, user)
}

func (ps *personalizationService) generateCourseContent(ctx context.Context, profile map[string]any, course *types.Course) (map[string]any, error) {
	profileRaw, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("encode profile for prompt: %w", err)
	}

	system := "You are an HR learning specialist who adapts course material to an individual employee. Always answer with a single JSON object."
	user := fmt.Sprintf(`Personalize the following course for an employee with the profile below.

Course title: %s
Course description: %s
Category: %s
Content type: %s
Estimated duration: %s

Employee profile:
%s

The personalized content JSON must include:
1. "overview": why this course matters for this employee
2. "modules": an ordered array of modules, each with "title", "summary", and "activities" matched to the employee's learning style
3. "objectives": concrete outcomes phrased for this employee's role
4. "pacing": a suggested schedule that fits their time availability`,
		course.Title, course.Description, course.Category, course.ContentType, course.EstimatedDuration, string(profileRaw))

	return ps.groq.GenerateJSON(ctx, system, user)
}

func (ps *personalizationService) broadcast(employeeID uuid.UUID, event sse.SSEEvent, data map[string]any) {
	msg := sse.SSEMessage{
		Channel: employeeID.String(),
		Event:   event,
		Data:    data,
	}
	if ps.emitter == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	ps.emitter.Emit(ctx, msg)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}
