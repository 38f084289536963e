package types

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestApplyGenerationDefaultsAbsentStatus(t *testing.T) {
	started := time.Now()
	e := &Enrollment{
		ID:                  uuid.New(),
		EmployeeID:          uuid.New(),
		CourseID:            uuid.New(),
		GenerationStartedAt: &started,
	}
	changed := ApplyGenerationDefaults(e)
	if !changed {
		t.Fatalf("want changed=true")
	}
	if e.GenerationStatus != GenerationStatusPending {
		t.Fatalf("status: want=%s got=%s", GenerationStatusPending, e.GenerationStatus)
	}
	if e.GenerationStartedAt != nil {
		t.Fatalf("a pending row must have no start timestamp")
	}
}

func TestApplyGenerationDefaultsKeepsExplicitStatus(t *testing.T) {
	for _, status := range []string{GenerationStatusInProgress, GenerationStatusCompleted, GenerationStatusFailed, "archived"} {
		e := &Enrollment{GenerationStatus: status}
		if ApplyGenerationDefaults(e) {
			t.Fatalf("status %q must not be overwritten", status)
		}
		if e.GenerationStatus != status {
			t.Fatalf("status: want=%s got=%s", status, e.GenerationStatus)
		}
	}
}

func TestApplyGenerationDefaultsNil(t *testing.T) {
	if ApplyGenerationDefaults(nil) {
		t.Fatalf("nil enrollment must be a no-op")
	}
}

func TestReapplyGenerationDefaultOnUpdateCourseChanged(t *testing.T) {
	courseA := uuid.New()
	courseB := uuid.New()
	prev := &Enrollment{CourseID: courseA, GenerationStatus: ""}
	next := &Enrollment{CourseID: courseB}

	if !ReapplyGenerationDefaultOnUpdate(prev, next) {
		t.Fatalf("want changed=true when status was empty and course changed")
	}
	if next.GenerationStatus != GenerationStatusPending {
		t.Fatalf("status: want=%s got=%s", GenerationStatusPending, next.GenerationStatus)
	}
}

func TestReapplyGenerationDefaultOnUpdateStatusPresent(t *testing.T) {
	courseA := uuid.New()
	courseB := uuid.New()
	prev := &Enrollment{CourseID: courseA, GenerationStatus: GenerationStatusCompleted}
	next := &Enrollment{CourseID: courseB, GenerationStatus: GenerationStatusCompleted}

	if ReapplyGenerationDefaultOnUpdate(prev, next) {
		t.Fatalf("a row with a status must never be touched on update")
	}
	if next.GenerationStatus != GenerationStatusCompleted {
		t.Fatalf("status: want=%s got=%s", GenerationStatusCompleted, next.GenerationStatus)
	}
}

func TestReapplyGenerationDefaultOnUpdateCourseUnchanged(t *testing.T) {
	course := uuid.New()
	prev := &Enrollment{CourseID: course, GenerationStatus: ""}
	next := &Enrollment{CourseID: course}

	if ReapplyGenerationDefaultOnUpdate(prev, next) {
		t.Fatalf("unchanged course must not re-trigger the default")
	}
	if next.GenerationStatus != "" {
		t.Fatalf("status must stay empty, got %s", next.GenerationStatus)
	}
}

func TestReapplyGenerationDefaultOnUpdateCourseNeverSet(t *testing.T) {
	prev := &Enrollment{CourseID: uuid.Nil, GenerationStatus: ""}
	next := &Enrollment{CourseID: uuid.Nil}

	if ReapplyGenerationDefaultOnUpdate(prev, next) {
		t.Fatalf("course neither changed nor set; the default must not fire")
	}
	if next.GenerationStatus != "" {
		t.Fatalf("status must stay empty, got %s", next.GenerationStatus)
	}
}

func TestReapplyGenerationDefaultOnUpdateCourseSetFirstTime(t *testing.T) {
	prev := &Enrollment{CourseID: uuid.Nil, GenerationStatus: ""}
	next := &Enrollment{CourseID: uuid.New()}

	if !ReapplyGenerationDefaultOnUpdate(prev, next) {
		t.Fatalf("setting the course for the first time must apply the default")
	}
	if next.GenerationStatus != GenerationStatusPending {
		t.Fatalf("status: want=%s got=%s", GenerationStatusPending, next.GenerationStatus)
	}
}
