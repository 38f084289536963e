package types

import (
	"github.com/google/uuid"
	"time"
)

const (
	EnrollmentStatusAssigned   = "assigned"
	EnrollmentStatusInProgress = "in_progress"
	EnrollmentStatusCompleted  = "completed"
)

// Generation status lifecycle for an enrollment's personalized content:
// pending -> in_progress -> completed|failed. The default-setter below only
// guarantees the initial pending value; all later transitions belong to the
// personalization worker.
const (
	GenerationStatusPending    = "pending"
	GenerationStatusInProgress = "in_progress"
	GenerationStatusCompleted  = "completed"
	GenerationStatusFailed     = "failed"
)

type Enrollment struct {
	ID                    uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EmployeeID            uuid.UUID  `gorm:"type:uuid;not null;index;column:employee_id" json:"employee_id"`
	Employee              *Employee  `gorm:"foreignKey:EmployeeID;references:ID" json:"-"`
	CourseID              uuid.UUID  `gorm:"type:uuid;not null;index;column:course_id" json:"course_id"`
	Course                *Course    `gorm:"foreignKey:CourseID;references:ID" json:"-"`
	Status                string     `gorm:"not null;default:'assigned';column:status" json:"status"`
	GenerationStatus      string     `gorm:"index;column:generation_status" json:"generation_status"`
	GenerationStartedAt   *time.Time `gorm:"column:generation_started_at" json:"generation_started_at,omitempty"`
	GenerationCompletedAt *time.Time `gorm:"column:generation_completed_at" json:"generation_completed_at,omitempty"`
	PersonalizedContentID *uuid.UUID `gorm:"type:uuid;column:personalized_content_id" json:"personalized_content_id,omitempty"`
	Attempts              int        `gorm:"not null;default:0;column:attempts" json:"attempts"`
	Error                 string     `gorm:"column:error" json:"error,omitempty"`
	LastErrorAt           *time.Time `gorm:"column:last_error_at" json:"last_error_at,omitempty"`
	LockedAt              *time.Time `gorm:"index;column:locked_at" json:"locked_at,omitempty"`
	HeartbeatAt           *time.Time `gorm:"column:heartbeat_at" json:"heartbeat_at,omitempty"`
	CreatedAt             time.Time  `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Enrollment) TableName() string {
	return "enrollment"
}

// ApplyGenerationDefaults is the insert-path default-setter: a row created
// without an explicit generation status starts at pending with no start
// timestamp. A caller-supplied status is never overwritten. Returns whether
// the row was changed.
func ApplyGenerationDefaults(e *Enrollment) bool {
	if e == nil {
		return false
	}
	if e.GenerationStatus != "" {
		return false
	}
	e.GenerationStatus = GenerationStatusPending
	e.GenerationStartedAt = nil
	return true
}

// ReapplyGenerationDefaultOnUpdate guards rows that predate the generation
// status column, or that were created through a path bypassing the default:
// when the previous status was empty and the course reference changed (or was
// set for the first time), the insert rule is re-applied. It never touches a
// row that already carries a status.
func ReapplyGenerationDefaultOnUpdate(prev, next *Enrollment) bool {
	if prev == nil || next == nil {
		return false
	}
	if prev.GenerationStatus != "" {
		return false
	}
	if next.CourseID == uuid.Nil {
		return false
	}
	if prev.CourseID == next.CourseID {
		return false
	}
	next.GenerationStatus = ""
	return ApplyGenerationDefaults(next)
}
