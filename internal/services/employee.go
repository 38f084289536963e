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

type EmployeeService interface {
	Create(ctx context.Context, input EmployeeInput) (*types.Employee, error)
	List(ctx context.Context) ([]*types.Employee, error)
	Get(ctx context.Context, employeeID uuid.UUID) (*types.Employee, error)
	GetCurrent(ctx context.Context) (*types.Employee, error)
	Update(ctx context.Context, employeeID uuid.UUID, input EmployeeInput) (*types.Employee, error)
	Delete(ctx context.Context, employeeID uuid.UUID) error
	LinkUser(ctx context.Context, employeeID, userID uuid.UUID) (*types.Employee, error)
	GetLearningPath(ctx context.Context, employeeID uuid.UUID) (*types.LearningPath, error)
}

type EmployeeInput struct {
	Name           string
	Role           string
	Department     string
	Experience     string
	AdditionalInfo string
}

type employeeService struct {
	db           *gorm.DB
	log          *logger.Logger
	employeeRepo repos.EmployeeRepo
	userRepo     repos.UserRepo
	pathRepo     repos.LearningPathRepo
}

func NewEmployeeService(
	db *gorm.DB,
	baseLog *logger.Logger,
	employeeRepo repos.EmployeeRepo,
	userRepo repos.UserRepo,
	pathRepo repos.LearningPathRepo,
) EmployeeService {
	return &employeeService{
		db:           db,
		log:          baseLog.With("service", "EmployeeService"),
		employeeRepo: employeeRepo,
		userRepo:     userRepo,
		pathRepo:     pathRepo,
	}
}

func (es *employeeService) Create(ctx context.Context, input EmployeeInput) (*types.Employee, error) {
	rd := requestdata.GetRequestData(ctx)
	if !rd.IsHRAdmin() {
		return nil, fmt.Errorf("only HR admins can create employees")
	}
	name := normalization.ParseDisplayString(input.Name)
	role := normalization.ParseDisplayString(input.Role)
	department := normalization.ParseDisplayString(input.Department)
	if name == "" || role == "" || department == "" {
		return nil, fmt.Errorf("name, role and department are required")
	}

	now := time.Now()
	employee := &types.Employee{
		ID:             uuid.New(),
		Name:           name,
		Role:           role,
		Department:     department,
		Experience:     normalization.ParseDisplayString(input.Experience),
		AdditionalInfo: strings.TrimSpace(input.AdditionalInfo),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := es.employeeRepo.Create(ctx, nil, []*types.Employee{employee}); err != nil {
		return nil, fmt.Errorf("create employee: %w", err)
	}
	return employee, nil
}

func (es *employeeService) List(ctx context.Context) ([]*types.Employee, error) {
	rd := requestdata.GetRequestData(ctx)
	if !rd.IsHRAdmin() {
		return nil, fmt.Errorf("only HR admins can list employees")
	}
	return es.employeeRepo.List(ctx, nil)
}

func (es *employeeService) Get(ctx context.Context, employeeID uuid.UUID) (*types.Employee, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("not authenticated")
	}
	if employeeID == uuid.Nil {
		return nil, fmt.Errorf("missing employee id")
	}
	employees, err := es.employeeRepo.GetByIDs(ctx, nil, []uuid.UUID{employeeID})
	if err != nil {
		return nil, err
	}
	if len(employees) == 0 || employees[0] == nil {
		return nil, fmt.Errorf("employee not found")
	}
	employee := employees[0]
	if !rd.IsHRAdmin() {
		if employee.UserID == nil || *employee.UserID != rd.UserID {
			return nil, fmt.Errorf("employee not found")
		}
	}
	return employee, nil
}

func (es *employeeService) GetCurrent(ctx context.Context) (*types.Employee, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("not authenticated")
	}
	employees, err := es.employeeRepo.GetByUserIDs(ctx, nil, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, err
	}
	if len(employees) == 0 || employees[0] == nil {
		return nil, fmt.Errorf("no employee record linked to this account")
	}
	return employees[0], nil
}

func (es *employeeService) Update(ctx context.Context, employeeID uuid.UUID, input EmployeeInput) (*types.Employee, error) {
	rd := requestdata.GetRequestData(ctx)
	if !rd.IsHRAdmin() {
		return nil, fmt.Errorf("only HR admins can update employees")
	}

	employee, err := es.Get(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if v := normalization.ParseDisplayString(input.Name); v != "" {
		fields["name"] = v
		employee.Name = v
	}
	if v := normalization.ParseDisplayString(input.Role); v != "" {
		fields["role"] = v
		employee.Role = v
	}
	if v := normalization.ParseDisplayString(input.Department); v != "" {
		fields["department"] = v
		employee.Department = v
	}
	if v := normalization.ParseDisplayString(input.Experience); v != "" {
		fields["experience"] = v
		employee.Experience = v
	}
	if v := strings.TrimSpace(input.AdditionalInfo); v != "" {
		fields["additional_info"] = v
		employee.AdditionalInfo = v
	}
	if len(fields) == 0 {
		return employee, nil
	}
	fields["updated_at"] = time.Now()

	if err := es.employeeRepo.UpdateFields(ctx, nil, employeeID, fields); err != nil {
		return nil, fmt.Errorf("update employee: %w", err)
	}
	return employee, nil
}

func (es *employeeService) Delete(ctx context.Context, employeeID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if !rd.IsHRAdmin() {
		return fmt.Errorf("only HR admins can delete employees")
	}
	if employeeID == uuid.Nil {
		return fmt.Errorf("missing employee id")
	}
	return es.employeeRepo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{employeeID})
}

// LinkUser attaches an authenticated account to an HR employee record so the
// employee can see their own enrollments and learning path.
func (es *employeeService) LinkUser(ctx context.Context, employeeID, userID uuid.UUID) (*types.Employee, error) {
	rd := requestdata.GetRequestData(ctx)
	if !rd.IsHRAdmin() {
		return nil, fmt.Errorf("only HR admins can link employees to accounts")
	}
	if employeeID == uuid.Nil || userID == uuid.Nil {
		return nil, fmt.Errorf("missing employee or user id")
	}

	employee, err := es.Get(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	users, err := es.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 || users[0] == nil {
		return nil, fmt.Errorf("user not found")
	}

	if err := es.employeeRepo.UpdateFields(ctx, nil, employeeID, map[string]any{
		"user_id":    userID,
		"updated_at": time.Now(),
	}); err != nil {
		return nil, fmt.Errorf("link user: %w", err)
	}
	employee.UserID = &userID
	return employee, nil
}

func (es *employeeService) GetLearningPath(ctx context.Context, employeeID uuid.UUID) (*types.LearningPath, error) {
	if _, err := es.Get(ctx, employeeID); err != nil {
		return nil, err
	}
	path, err := es.pathRepo.GetLatestByEmployeeID(ctx, nil, employeeID)
	if err != nil {
		return nil, err
	}
	if path == nil {
		return nil, fmt.Errorf("no learning path generated yet")
	}
	return path, nil
}
