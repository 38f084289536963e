package db

import (
	"reflect"
	"strings"
	"testing"

	"github.com/learnfinity/learnfinity-backend/internal/types"
)

// The original-email uniqueness must hold among active mappings only: a
// retired (soft-deleted) mapping keeps its row, and the same email must be
// mappable again afterwards. An absolute unique index would reject the
// re-mapping insert.
func TestActiveMappingIndexIsPartial(t *testing.T) {
	if !strings.Contains(uniqueActiveMappingIndexDDL, "UNIQUE INDEX") {
		t.Fatalf("index DDL not unique: %s", uniqueActiveMappingIndexDDL)
	}
	if !strings.Contains(uniqueActiveMappingIndexDDL, "WHERE deleted_at IS NULL") {
		t.Fatalf("index DDL not scoped to active rows: %s", uniqueActiveMappingIndexDDL)
	}
}

func TestCredentialMappingModelHasNoAbsoluteUniqueIndex(t *testing.T) {
	field, ok := reflect.TypeOf(types.CredentialMapping{}).FieldByName("OriginalEmail")
	if !ok {
		t.Fatal("OriginalEmail field missing")
	}
	if strings.Contains(strings.ToLower(field.Tag.Get("gorm")), "uniqueindex") {
		t.Fatalf("OriginalEmail carries an absolute uniqueIndex tag; AutoMigrate would recreate the index the partial DDL replaces: %s", field.Tag.Get("gorm"))
	}
}
