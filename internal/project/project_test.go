package project

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zulandar/taskyard/internal/models"
	"github.com/zulandar/taskyard/internal/store"
	"github.com/zulandar/taskyard/internal/store/storetest"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newProject(t *testing.T, st store.Store, creator string) *models.Project {
	t.Helper()
	p, err := Create(context.Background(), st, CreateOpts{Title: "Launch", CreatedBy: creator}, now)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return p
}

func TestCreate_CreatorIsSoleAdmin(t *testing.T) {
	st := storetest.New(t)
	p := newProject(t, st, "alice")

	if p.Status != models.ProjectPlanning {
		t.Errorf("Status = %q, want Planning", p.Status)
	}
	if p.Priority != models.PriorityMedium {
		t.Errorf("Priority = %q, want Medium", p.Priority)
	}
	if len(p.Members) != 1 || p.Members[0].User != "alice" || p.Members[0].Role != models.RoleAdmin {
		t.Errorf("Members = %+v", p.Members)
	}
	if len(p.Activity) != 1 || p.Activity[0].Action != "created_project" {
		t.Errorf("Activity = %+v", p.Activity)
	}

	got, err := Get(context.Background(), st, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Launch" {
		t.Errorf("Title = %q", got.Title)
	}
}

func TestCreate_Validation(t *testing.T) {
	st := storetest.New(t)
	tests := []struct {
		name string
		opts CreateOpts
	}{
		{"no title", CreateOpts{CreatedBy: "alice"}},
		{"blank title", CreateOpts{Title: "  ", CreatedBy: "alice"}},
		{"no creator", CreateOpts{Title: "x"}},
		{"bad priority", CreateOpts{Title: "x", CreatedBy: "alice", Priority: "Whenever"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Create(context.Background(), st, tt.opts, now)
			if !errors.Is(err, models.ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestGet_NotFound(t *testing.T) {
	st := storetest.New(t)
	_, err := Get(context.Background(), st, "prj-missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRoles(t *testing.T) {
	p := &models.Project{
		CreatedBy: "alice",
		Members: []models.Member{
			{User: "bob", Role: models.RoleContributor},
			{User: "carol", Role: models.RoleViewer},
			{User: "dave", Role: models.RoleAdmin},
		},
	}
	tests := []struct {
		user    string
		member  bool
		admin   bool
		canEdit bool
	}{
		{"alice", true, true, true},
		{"bob", true, false, true},
		{"carol", true, false, false},
		{"dave", true, true, true},
		{"eve", false, false, false},
		{"", false, false, false},
	}
	for _, tt := range tests {
		if got := IsMember(p, tt.user); got != tt.member {
			t.Errorf("IsMember(%q) = %v, want %v", tt.user, got, tt.member)
		}
		if got := IsAdmin(p, tt.user); got != tt.admin {
			t.Errorf("IsAdmin(%q) = %v, want %v", tt.user, got, tt.admin)
		}
		if got := CanEdit(p, tt.user); got != tt.canEdit {
			t.Errorf("CanEdit(%q) = %v, want %v", tt.user, got, tt.canEdit)
		}
	}
}

func TestAddMember(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()
	p := newProject(t, st, "alice")

	got, err := AddMember(ctx, st, p.ID, "alice", "bob", models.RoleViewer, now)
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if len(got.Members) != 2 {
		t.Fatalf("Members = %+v", got.Members)
	}

	got, err = AddMember(ctx, st, p.ID, "alice", "bob", models.RoleContributor, now)
	if err != nil {
		t.Fatalf("AddMember role change: %v", err)
	}
	if len(got.Members) != 2 || got.Members[1].Role != models.RoleContributor {
		t.Errorf("Members after role change = %+v", got.Members)
	}
	if last := got.Activity[len(got.Activity)-1]; last.Action != "changed_role" {
		t.Errorf("last activity = %q, want changed_role", last.Action)
	}
}

func TestAddMember_Errors(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()
	p := newProject(t, st, "alice")
	if _, err := AddMember(ctx, st, p.ID, "alice", "bob", models.RoleContributor, now); err != nil {
		t.Fatal(err)
	}

	if _, err := AddMember(ctx, st, p.ID, "bob", "carol", models.RoleViewer, now); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("contributor adding member err = %v, want ErrPermissionDenied", err)
	}
	if _, err := AddMember(ctx, st, p.ID, "alice", "carol", "Owner", now); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("bad role err = %v, want ErrInvalidInput", err)
	}
	if _, err := AddMember(ctx, st, "prj-missing", "alice", "carol", models.RoleViewer, now); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing project err = %v, want ErrNotFound", err)
	}
}

func TestRemoveMember(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()
	p := newProject(t, st, "alice")
	if _, err := AddMember(ctx, st, p.ID, "alice", "bob", models.RoleContributor, now); err != nil {
		t.Fatal(err)
	}

	got, err := RemoveMember(ctx, st, p.ID, "alice", "bob", now)
	if err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if IsMember(got, "bob") {
		t.Error("bob still a member")
	}

	if _, err := RemoveMember(ctx, st, p.ID, "alice", "alice", now); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("removing creator err = %v, want ErrInvalidInput", err)
	}
	if _, err := RemoveMember(ctx, st, p.ID, "bob", "alice", now); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("non-member removing err = %v, want ErrPermissionDenied", err)
	}
}

func TestDelete_CreatorOnlyAndCascades(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()
	p := newProject(t, st, "alice")
	if _, err := AddMember(ctx, st, p.ID, "alice", "bob", models.RoleAdmin, now); err != nil {
		t.Fatal(err)
	}

	parent := "tsk-a"
	for _, tk := range []*models.Task{
		{ID: "tsk-a", Title: "A", Project: p.ID, CreatedAt: now},
		{ID: "tsk-b", Title: "B", Project: p.ID, ParentTask: &parent, Level: 1, CreatedAt: now},
		{ID: "tsk-x", Title: "X", Project: "prj-other", CreatedAt: now},
	} {
		if err := st.CreateTask(ctx, tk); err != nil {
			t.Fatal(err)
		}
	}

	if err := Delete(ctx, st, p.ID, "bob"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("admin non-creator delete err = %v, want ErrPermissionDenied", err)
	}
	if err := Delete(ctx, st, p.ID, "alice"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := st.GetProject(ctx, p.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("project still present: %v", err)
	}
	for _, id := range []string{"tsk-a", "tsk-b"} {
		if _, err := st.GetTask(ctx, id); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("task %s still present: %v", id, err)
		}
	}
	if _, err := st.GetTask(ctx, "tsk-x"); err != nil {
		t.Errorf("other project's task deleted: %v", err)
	}
}

func TestRecord(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()
	p := newProject(t, st, "alice")

	if err := Record(ctx, st, p.ID, "created_task", "created task x", "alice", now); err != nil {
		t.Fatalf("Record: %v", err)
	}
	got, _ := Get(ctx, st, p.ID)
	if len(got.Activity) != 2 || got.Activity[1].Action != "created_task" {
		t.Errorf("Activity = %+v", got.Activity)
	}
}

func TestLinkUnlinkTask(t *testing.T) {
	p := &models.Project{}
	if !LinkTask(p, "tsk-1") {
		t.Error("first LinkTask = false")
	}
	if LinkTask(p, "tsk-1") {
		t.Error("duplicate LinkTask = true")
	}
	LinkTask(p, "tsk-2")
	if !UnlinkTask(p, "tsk-1") {
		t.Error("UnlinkTask present = false")
	}
	if UnlinkTask(p, "tsk-1") {
		t.Error("UnlinkTask absent = true")
	}
	if len(p.Tasks) != 1 || p.Tasks[0] != "tsk-2" {
		t.Errorf("Tasks = %v", p.Tasks)
	}
}
