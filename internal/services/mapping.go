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

// MappingService is the operator surface over credential mappings: HR admins
// add a mapping when an account breaks and retire it once the account is
// fixed. The sign-in path never goes through this service; it reads mappings
// via the resolver's MappingStore.
type MappingService interface {
	Create(ctx context.Context, originalEmail, fallbackEmail, fallbackPassword, note string) (*types.CredentialMapping, error)
	List(ctx context.Context) ([]*types.CredentialMapping, error)
	Delete(ctx context.Context, mappingID uuid.UUID) error
}

type mappingService struct {
	db          *gorm.DB
	log         *logger.Logger
	mappingRepo repos.CredentialMappingRepo
}

func NewMappingService(db *gorm.DB, baseLog *logger.Logger, mappingRepo repos.CredentialMappingRepo) MappingService {
	return &mappingService{
		db:          db,
		log:         baseLog.With("service", "MappingService"),
		mappingRepo: mappingRepo,
	}
}

func (ms *mappingService) Create(ctx context.Context, originalEmail, fallbackEmail, fallbackPassword, note string) (*types.CredentialMapping, error) {
	rd := requestdata.GetRequestData(ctx)
	if !rd.IsHRAdmin() {
		return nil, fmt.Errorf("only HR admins can manage credential mappings")
	}

	originalEmail = normalization.ParseInputString(originalEmail)
	fallbackEmail = normalization.ParseInputString(fallbackEmail)
	if originalEmail == "" || fallbackEmail == "" || fallbackPassword == "" {
		return nil, fmt.Errorf("original email, fallback email and fallback password are required")
	}
	if originalEmail == fallbackEmail {
		return nil, fmt.Errorf("fallback account must differ from the original")
	}

	existing, err := ms.mappingRepo.GetByOriginalEmails(ctx, nil, []string{originalEmail})
	if err != nil {
		return nil, fmt.Errorf("check existing mapping: %w", err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("a mapping for this email already exists")
	}

	now := time.Now()
	mapping := &types.CredentialMapping{
		ID:               uuid.New(),
		OriginalEmail:    originalEmail,
		FallbackEmail:    fallbackEmail,
		FallbackPassword: fallbackPassword,
		Note:             strings.TrimSpace(note),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if _, err := ms.mappingRepo.Create(ctx, nil, []*types.CredentialMapping{mapping}); err != nil {
		if repos.IsUniqueViolation(err) {
			return nil, fmt.Errorf("a mapping for this email already exists")
		}
		return nil, fmt.Errorf("create mapping: %w", err)
	}

	ms.log.Info("Credential mapping created", "original_email", mapping.OriginalEmail, "fallback_email", mapping.FallbackEmail)
	return mapping, nil
}

func (ms *mappingService) List(ctx context.Context) ([]*types.CredentialMapping, error) {
	rd := requestdata.GetRequestData(ctx)
	if !rd.IsHRAdmin() {
		return nil, fmt.Errorf("only HR admins can manage credential mappings")
	}
	return ms.mappingRepo.List(ctx, nil)
}

func (ms *mappingService) Delete(ctx context.Context, mappingID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if !rd.IsHRAdmin() {
		return fmt.Errorf("only HR admins can manage credential mappings")
	}
	if mappingID == uuid.Nil {
		return fmt.Errorf("missing mapping id")
	}
	return ms.mappingRepo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{mappingID})
}
