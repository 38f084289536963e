package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/learnfinity/learnfinity-backend/internal/normalization"
	"github.com/learnfinity/learnfinity-backend/internal/repos"
	"github.com/learnfinity/learnfinity-backend/internal/types"
)

// gormMappingStore adapts CredentialMappingRepo to the resolver's read-only
// MappingStore interface.
type gormMappingStore struct {
	db   *gorm.DB
	repo repos.CredentialMappingRepo
}

func NewMappingStore(db *gorm.DB, repo repos.CredentialMappingRepo) MappingStore {
	return &gormMappingStore{db: db, repo: repo}
}

func (ms *gormMappingStore) Lookup(ctx context.Context, originalEmail string) (*types.CredentialMapping, error) {
	email := normalization.ParseInputString(originalEmail)
	if email == "" {
		return nil, nil
	}
	mappings, err := ms.repo.GetByOriginalEmails(ctx, nil, []string{email})
	if err != nil {
		return nil, fmt.Errorf("lookup credential mapping: %w", err)
	}
	if len(mappings) == 0 || mappings[0] == nil {
		return nil, nil
	}
	return mappings[0], nil
}
