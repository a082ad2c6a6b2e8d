package models

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

// gormTag extracts the gorm tag from a struct field.
func gormTag(t *testing.T, typ reflect.Type, fieldName string) string {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	return f.Tag.Get("gorm")
}

// assertGormTag checks that a struct field's gorm tag contains the expected value.
func assertGormTag(t *testing.T, typ reflect.Type, fieldName, expected string) {
	t.Helper()
	tag := gormTag(t, typ, fieldName)
	if !strings.Contains(tag, expected) {
		t.Errorf("%s.%s gorm tag = %q, want to contain %q", typ.Name(), fieldName, tag, expected)
	}
}

// assertFieldType checks that a struct field has the expected Go type.
func assertFieldType(t *testing.T, typ reflect.Type, fieldName, expectedType string) {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	got := f.Type.String()
	if got != expectedType {
		t.Errorf("%s.%s type = %q, want %q", typ.Name(), fieldName, got, expectedType)
	}
}

func TestTask_Fields(t *testing.T) {
	typ := reflect.TypeOf(Task{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "ID", "size:32")
	assertGormTag(t, typ, "Title", "not null")
	assertGormTag(t, typ, "Project", "index")
	assertGormTag(t, typ, "ParentTask", "index")
	assertGormTag(t, typ, "Status", "default:ToDo")
	assertGormTag(t, typ, "Priority", "default:Medium")
	assertGormTag(t, typ, "Subtasks", "serializer:json")
	assertGormTag(t, typ, "Dependencies", "serializer:json")
	assertGormTag(t, typ, "Checklist", "serializer:json")
	assertGormTag(t, typ, "Recurrence", "embeddedPrefix:recurrence_")
	assertGormTag(t, typ, "Health", "embeddedPrefix:health_")
	assertGormTag(t, typ, "CreatedAt", "autoCreateTime:false")

	assertFieldType(t, typ, "ParentTask", "*string")
	assertFieldType(t, typ, "DueDate", "*time.Time")
	assertFieldType(t, typ, "EstimatedHours", "*float64")
	assertFieldType(t, typ, "Level", "int")
	assertFieldType(t, typ, "Dependencies", "[]models.Dependency")
}

func TestProject_Fields(t *testing.T) {
	typ := reflect.TypeOf(Project{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "CreatedBy", "not null")
	assertGormTag(t, typ, "Status", "default:Planning")
	assertGormTag(t, typ, "Members", "serializer:json")
	assertGormTag(t, typ, "Tasks", "serializer:json")
	assertGormTag(t, typ, "Activity", "serializer:json")

	assertFieldType(t, typ, "Progress", "int")
	assertFieldType(t, typ, "Members", "[]models.Member")
}

func TestTimeEntry_Fields(t *testing.T) {
	typ := reflect.TypeOf(TimeEntry{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "TaskID", "index")
	assertGormTag(t, typ, "UserID", "index")
	assertFieldType(t, typ, "EndTime", "*time.Time")
	assertFieldType(t, typ, "DurationMs", "int64")
}

func TestTask_IsTopLevel(t *testing.T) {
	empty := ""
	parent := "tsk-000000000001"
	tests := []struct {
		name   string
		parent *string
		want   bool
	}{
		{"nil parent", nil, true},
		{"empty parent", &empty, true},
		{"with parent", &parent, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := Task{ParentTask: tt.parent}
			if got := task.IsTopLevel(); got != tt.want {
				t.Errorf("IsTopLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTask_CompletionTime(t *testing.T) {
	updated := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	completed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	task := Task{UpdatedAt: updated}
	if got := task.CompletionTime(); !got.Equal(updated) {
		t.Errorf("without CompletedAt: got %v, want %v", got, updated)
	}
	task.CompletedAt = &completed
	if got := task.CompletionTime(); !got.Equal(completed) {
		t.Errorf("with CompletedAt: got %v, want %v", got, completed)
	}
}

func TestEnums_Valid(t *testing.T) {
	if !StatusCompleted.Valid() || TaskStatus("Done").Valid() {
		t.Error("TaskStatus.Valid mismatch")
	}
	if !PriorityUrgent.Valid() || Priority("").Valid() {
		t.Error("Priority.Valid mismatch")
	}
	if !StartToFinish.Valid() || RelationType("FS").Valid() {
		t.Error("RelationType.Valid mismatch")
	}
	if !FrequencyCustom.Valid() || Frequency("yearly").Valid() {
		t.Error("Frequency.Valid mismatch")
	}
	if !ProjectOnHold.Valid() || ProjectStatus("Archived").Valid() {
		t.Error("ProjectStatus.Valid mismatch")
	}
	if !RoleViewer.Valid() || Role("Owner").Valid() {
		t.Error("Role.Valid mismatch")
	}
}
