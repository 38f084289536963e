package types

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"time"
)

type LearningPath struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EmployeeID uuid.UUID      `gorm:"type:uuid;not null;index;column:employee_id" json:"employee_id"`
	Employee   *Employee      `gorm:"foreignKey:EmployeeID;references:ID" json:"-"`
	Path       datatypes.JSON `gorm:"type:jsonb;not null;column:path" json:"path"`
	Model      string         `gorm:"column:model" json:"model"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (LearningPath) TableName() string {
	return "learning_path"
}
