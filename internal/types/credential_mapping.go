package types

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"time"
)

// CredentialMapping associates a broken identity with a working fallback
// account. Read-only at authentication time; rows are created and retired by
// HR operators once the underlying account is fixed. original_email is unique
// among active rows only: retirement is a soft delete and the same email may
// be mapped again later, so the index is a partial one created in
// AutoMigrateAll, not a gorm uniqueIndex tag.
type CredentialMapping struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OriginalEmail    string         `gorm:"not null;column:original_email" json:"original_email"`
	FallbackEmail    string         `gorm:"not null;column:fallback_email" json:"fallback_email"`
	FallbackPassword string         `gorm:"not null;column:fallback_password" json:"-"`
	Note             string         `gorm:"column:note" json:"note"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (CredentialMapping) TableName() string {
	return "credential_mapping"
}
