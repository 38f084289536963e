package types

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"time"
)

type Course struct {
	ID                uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title             string         `gorm:"not null;column:title" json:"title"`
	Description       string         `gorm:"column:description" json:"description"`
	Category          string         `gorm:"index;column:category" json:"category"`
	ContentType       string         `gorm:"column:content_type" json:"content_type"`
	EstimatedDuration string         `gorm:"column:estimated_duration" json:"estimated_duration"`
	CreatedAt         time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Course) TableName() string {
	return "course"
}
