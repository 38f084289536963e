package seeds

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/learnfinity/learnfinity-backend/internal/logger"
	"github.com/learnfinity/learnfinity-backend/internal/normalization"
	"github.com/learnfinity/learnfinity-backend/internal/repos"
	"github.com/learnfinity/learnfinity-backend/internal/types"
	"github.com/learnfinity/learnfinity-backend/internal/utils"
)

// SeedFile is the demo dataset shape: an HR admin account, a starter course
// catalog, and the employee roster the HR dashboard begins with.
type SeedFile struct {
	Users []struct {
		Email     string `yaml:"email"`
		Password  string `yaml:"password"`
		FirstName string `yaml:"first_name"`
		LastName  string `yaml:"last_name"`
		Role      string `yaml:"role"`
	} `yaml:"users"`
	Employees []struct {
		Name           string `yaml:"name"`
		Role           string `yaml:"role"`
		Department     string `yaml:"department"`
		Experience     string `yaml:"experience"`
		AdditionalInfo string `yaml:"additional_info"`
	} `yaml:"employees"`
	Courses []struct {
		Title             string `yaml:"title"`
		Description       string `yaml:"description"`
		Category          string `yaml:"category"`
		ContentType       string `yaml:"content_type"`
		EstimatedDuration string `yaml:"estimated_duration"`
	} `yaml:"courses"`
}

type Seeder struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	employeeRepo repos.EmployeeRepo
	courseRepo   repos.CourseRepo
}

func NewSeeder(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, employeeRepo repos.EmployeeRepo, courseRepo repos.CourseRepo) *Seeder {
	return &Seeder{
		db:           db,
		log:          baseLog.With("component", "Seeder"),
		userRepo:     userRepo,
		employeeRepo: employeeRepo,
		courseRepo:   courseRepo,
	}
}

// Run loads SEED_PATH if set. Seeding is idempotent: rows that already exist
// (matched by email, name, or title) are skipped, so it is safe on every boot.
func (s *Seeder) Run(ctx context.Context) error {
	path := strings.TrimSpace(os.Getenv("SEED_PATH"))
	if path == "" {
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	var file SeedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	created := 0

	for _, u := range file.Users {
		email := normalization.ParseInputString(u.Email)
		if email == "" || u.Password == "" {
			continue
		}
		exists, err := s.userRepo.EmailExists(ctx, nil, email)
		if err != nil {
			return fmt.Errorf("check seed user %s: %w", email, err)
		}
		if exists {
			continue
		}
		role := u.Role
		if role == "" {
			role = types.RoleEmployee
		}
		now := time.Now()
		user := &types.User{
			ID:        uuid.New(),
			Email:     email,
			Password:  u.Password,
			FirstName: normalization.ParseDisplayString(u.FirstName),
			LastName:  normalization.ParseDisplayString(u.LastName),
			Role:      role,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := utils.HashPassword(ctx, s.log, user); err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}
		if _, err := s.userRepo.Create(ctx, nil, []*types.User{user}); err != nil {
			return fmt.Errorf("create seed user %s: %w", email, err)
		}
		created++
	}

	existingEmployees, err := s.employeeRepo.List(ctx, nil)
	if err != nil {
		return fmt.Errorf("list employees: %w", err)
	}
	employeeNames := make(map[string]bool, len(existingEmployees))
	for _, e := range existingEmployees {
		employeeNames[strings.ToLower(e.Name)] = true
	}
	for _, e := range file.Employees {
		name := normalization.ParseDisplayString(e.Name)
		if name == "" || employeeNames[strings.ToLower(name)] {
			continue
		}
		now := time.Now()
		employee := &types.Employee{
			ID:             uuid.New(),
			Name:           name,
			Role:           normalization.ParseDisplayString(e.Role),
			Department:     normalization.ParseDisplayString(e.Department),
			Experience:     normalization.ParseDisplayString(e.Experience),
			AdditionalInfo: strings.TrimSpace(e.AdditionalInfo),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if _, err := s.employeeRepo.Create(ctx, nil, []*types.Employee{employee}); err != nil {
			return fmt.Errorf("create seed employee %s: %w", name, err)
		}
		created++
	}

	existingCourses, err := s.courseRepo.List(ctx, nil)
	if err != nil {
		return fmt.Errorf("list courses: %w", err)
	}
	courseTitles := make(map[string]bool, len(existingCourses))
	for _, c := range existingCourses {
		courseTitles[strings.ToLower(c.Title)] = true
	}
	for _, c := range file.Courses {
		title := normalization.ParseDisplayString(c.Title)
		if title == "" || courseTitles[strings.ToLower(title)] {
			continue
		}
		now := time.Now()
		course := &types.Course{
			ID:                uuid.New(),
			Title:             title,
			Description:       strings.TrimSpace(c.Description),
			Category:          normalization.ParseDisplayString(c.Category),
			ContentType:       normalization.ParseDisplayString(c.ContentType),
			EstimatedDuration: normalization.ParseDisplayString(c.EstimatedDuration),
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if _, err := s.courseRepo.Create(ctx, nil, []*types.Course{course}); err != nil {
			return fmt.Errorf("create seed course %s: %w", title, err)
		}
		created++
	}

	s.log.Info("Seeding finished", "path", path, "created", created)
	return nil
}
