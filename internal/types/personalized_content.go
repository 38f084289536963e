package types

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"time"
)

type PersonalizedContent struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EnrollmentID uuid.UUID      `gorm:"type:uuid;not null;index;column:enrollment_id" json:"enrollment_id"`
	EmployeeID   uuid.UUID      `gorm:"type:uuid;not null;index;column:employee_id" json:"employee_id"`
	CourseID     uuid.UUID      `gorm:"type:uuid;not null;index;column:course_id" json:"course_id"`
	Content      datatypes.JSON `gorm:"type:jsonb;not null;column:content" json:"content"`
	Model        string         `gorm:"column:model" json:"model"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (PersonalizedContent) TableName() string {
	return "personalized_content"
}
