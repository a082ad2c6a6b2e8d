package task

import (
	"context"
	"errors"
	"testing"

	"github.com/zulandar/taskyard/internal/models"
	"github.com/zulandar/taskyard/internal/project"
	"github.com/zulandar/taskyard/internal/store"
)

func TestDeleteCascade_RemovesSubtreeAndUnlinks(t *testing.T) {
	st, pid := fixture(t)
	ctx := context.Background()

	a := mustCreate(t, st, pid, "", "A")
	b := mustCreate(t, st, pid, a.ID, "B")
	c := mustCreate(t, st, pid, b.ID, "C")
	keep := mustCreate(t, st, pid, "", "Keep")

	if err := DeleteCascade(ctx, st, a.ID, "alice", now); err != nil {
		t.Fatalf("DeleteCascade: %v", err)
	}
	for _, id := range []string{a.ID, b.ID, c.ID} {
		if _, err := st.GetTask(ctx, id); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("task %s still present: %v", id, err)
		}
	}
	p, _ := project.Get(ctx, st, pid)
	if len(p.Tasks) != 1 || p.Tasks[0] != keep.ID {
		t.Errorf("project tasks = %v, want [%s]", p.Tasks, keep.ID)
	}
	if last := p.Activity[len(p.Activity)-1]; last.Action != "deleted_task" {
		t.Errorf("last activity = %q", last.Action)
	}
}

func TestDeleteCascade_NestedUnlinksFromParent(t *testing.T) {
	st, pid := fixture(t)
	ctx := context.Background()

	a := mustCreate(t, st, pid, "", "A")
	b := mustCreate(t, st, pid, a.ID, "B")
	b2 := mustCreate(t, st, pid, a.ID, "B2")

	if err := DeleteCascade(ctx, st, b.ID, "alice", now); err != nil {
		t.Fatalf("DeleteCascade: %v", err)
	}
	gotA, err := Get(ctx, st, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(gotA.Subtasks) != 1 || gotA.Subtasks[0] != b2.ID {
		t.Errorf("A.Subtasks = %v, want [%s]", gotA.Subtasks, b2.ID)
	}
}

func TestDeleteCascade_ToleratesMissingDescendants(t *testing.T) {
	st, pid := fixture(t)
	ctx := context.Background()

	a := mustCreate(t, st, pid, "", "A")
	b := mustCreate(t, st, pid, a.ID, "B")
	c := mustCreate(t, st, pid, b.ID, "C")
	if err := st.DeleteTask(ctx, b.ID); err != nil {
		t.Fatal(err)
	}

	if err := DeleteCascade(ctx, st, a.ID, "alice", now); err != nil {
		t.Fatalf("DeleteCascade: %v", err)
	}
	if _, err := st.GetTask(ctx, a.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("A still present: %v", err)
	}
	// C is orphaned: it was only reachable through the already-deleted B.
	if _, err := st.GetTask(ctx, c.ID); err != nil {
		t.Errorf("C: %v", err)
	}
}

func TestDeleteCascade_MissingRoot(t *testing.T) {
	st, _ := fixture(t)
	err := DeleteCascade(context.Background(), st, "tsk-missing", "alice", now)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteCascade_RefreshesProgress(t *testing.T) {
	st, pid := fixture(t)
	ctx := context.Background()

	a := mustCreate(t, st, pid, "", "A")
	b := mustCreate(t, st, pid, "", "B")
	done := models.StatusCompleted
	if _, err := Update(ctx, st, a.ID, "alice", UpdateOpts{Status: &done}, now); err != nil {
		t.Fatal(err)
	}

	if err := DeleteCascade(ctx, st, b.ID, "alice", now); err != nil {
		t.Fatalf("DeleteCascade: %v", err)
	}
	p, _ := project.Get(ctx, st, pid)
	if p.Progress != 100 || p.Status != models.ProjectCompleted {
		t.Errorf("progress/status = %d/%q, want 100/Completed", p.Progress, p.Status)
	}
}

// failingStore fails DeleteTask for one id.
type failingStore struct {
	store.Store
	failID string
}

func (s *failingStore) DeleteTask(ctx context.Context, id string) error {
	if id == s.failID {
		return errors.New("disk full")
	}
	return s.Store.DeleteTask(ctx, id)
}

func TestDeleteCascade_RestoresLinkOnFailure(t *testing.T) {
	st, pid := fixture(t)
	ctx := context.Background()

	a := mustCreate(t, st, pid, "", "A")
	b := mustCreate(t, st, pid, a.ID, "B")

	fs := &failingStore{Store: st, failID: a.ID}
	if err := DeleteCascade(ctx, fs, a.ID, "alice", now); err == nil {
		t.Fatal("expected error")
	}

	p, _ := project.Get(ctx, st, pid)
	if len(p.Tasks) != 1 || p.Tasks[0] != a.ID {
		t.Errorf("project tasks = %v, want link to %s restored", p.Tasks, a.ID)
	}
	// B was deleted before the failure; the compensation only restores
	// reachability of the root.
	if _, err := st.GetTask(ctx, b.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("B: %v", err)
	}
}

func TestCollectSubtree_Preorder(t *testing.T) {
	st, pid := fixture(t)
	ctx := context.Background()

	a := mustCreate(t, st, pid, "", "A")
	b := mustCreate(t, st, pid, a.ID, "B")
	c := mustCreate(t, st, pid, b.ID, "C")
	d := mustCreate(t, st, pid, a.ID, "D")

	a, _ = Get(ctx, st, a.ID)
	order, err := collectSubtree(ctx, st, a.ID, a.Subtasks)
	if err != nil {
		t.Fatalf("collectSubtree: %v", err)
	}
	want := []string{a.ID, b.ID, c.ID, d.ID}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, order[i], want[i])
		}
	}
}
