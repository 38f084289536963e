package types

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"time"
)

type Employee struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID         *uuid.UUID     `gorm:"type:uuid;index;column:user_id" json:"user_id,omitempty"`
	User           *User          `gorm:"foreignKey:UserID;references:ID" json:"-"`
	Name           string         `gorm:"not null;column:name" json:"name"`
	Role           string         `gorm:"not null;column:role" json:"role"`
	Department     string         `gorm:"not null;column:department" json:"department"`
	Experience     string         `gorm:"column:experience" json:"experience"`
	AdditionalInfo string         `gorm:"column:additional_info" json:"additional_info"`
	Profile        datatypes.JSON `gorm:"type:jsonb;column:profile" json:"profile,omitempty"`
	ProfileBuiltAt *time.Time     `gorm:"column:profile_built_at" json:"profile_built_at,omitempty"`
	LearningPathID *uuid.UUID     `gorm:"type:uuid;column:learning_path_id" json:"learning_path_id,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Employee) TableName() string {
	return "hr_employee"
}
