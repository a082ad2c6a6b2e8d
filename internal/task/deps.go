package task

import (
	"context"
	"fmt"
	"time"

	"github.com/zulandar/taskyard/internal/models"
	"github.com/zulandar/taskyard/internal/project"
	"github.com/zulandar/taskyard/internal/store"
)

// ErrDependencyCycle is returned when a new edge would make a task depend on
// itself, directly or through other tasks.
var ErrDependencyCycle = fmt.Errorf("dependency cycle: %w", models.ErrInvalidInput)

// UpsertDependency sets the edge to dep.Task, replacing the type and delay
// of an existing edge in place. It reports whether a new edge was appended.
func UpsertDependency(t *models.Task, dep models.Dependency) bool {
	for i := range t.Dependencies {
		if t.Dependencies[i].Task == dep.Task {
			t.Dependencies[i].Type = dep.Type
			t.Dependencies[i].Delay = dep.Delay
			return false
		}
	}
	t.Dependencies = append(t.Dependencies, dep)
	return true
}

// DropDependency removes every edge to depID and reports whether any was
// present.
func DropDependency(t *models.Task, depID string) bool {
	kept := t.Dependencies[:0]
	for _, d := range t.Dependencies {
		if d.Task != depID {
			kept = append(kept, d)
		}
	}
	removed := len(kept) != len(t.Dependencies)
	t.Dependencies = kept
	return removed
}

// AddDependency makes taskID depend on depID. An empty relation type means
// finish-to-start. The target must exist in the same project and the edge
// must not close a cycle.
func AddDependency(ctx context.Context, st store.Store, taskID, depID string, typ models.RelationType, delay float64, userID string, now time.Time) (*models.Task, error) {
	if typ == "" {
		typ = models.FinishToStart
	}
	if !typ.Valid() {
		return nil, fmt.Errorf("task: invalid relation type %q: %w", typ, models.ErrInvalidInput)
	}
	if delay < 0 {
		return nil, fmt.Errorf("task: dependency delay must be non-negative, got %g: %w", delay, models.ErrInvalidInput)
	}
	if taskID == depID {
		return nil, fmt.Errorf("task: %s cannot depend on itself: %w", taskID, ErrDependencyCycle)
	}

	t, err := Get(ctx, st, taskID)
	if err != nil {
		return nil, err
	}
	dep, err := st.GetTask(ctx, depID)
	if err != nil {
		return nil, fmt.Errorf("task: dependency target %s: %w", depID, err)
	}
	if dep.Project != t.Project {
		return nil, fmt.Errorf("task: dependency target %s is not in project %s: %w", depID, t.Project, models.ErrInvalidInput)
	}

	cycle, err := createsCycle(ctx, st, taskID, depID)
	if err != nil {
		return nil, err
	}
	if cycle {
		return nil, fmt.Errorf("task: %s already depends on %s: %w", depID, taskID, ErrDependencyCycle)
	}

	UpsertDependency(t, models.Dependency{Task: depID, Type: typ, Delay: delay})
	t.UpdatedAt = now
	if err := st.SaveTask(ctx, t); err != nil {
		return nil, fmt.Errorf("task: save %s: %w", taskID, err)
	}
	if err := project.Record(ctx, st, t.Project, "added_dependency",
		fmt.Sprintf("%s depends on %s (%s)", taskID, depID, typ), userID, now); err != nil && !store.IsNotFound(err) {
		return nil, fmt.Errorf("task: %w", err)
	}
	return t, nil
}

// RemoveDependency drops the edge from taskID to depID. Removing an absent
// edge is a no-op.
func RemoveDependency(ctx context.Context, st store.Store, taskID, depID, userID string, now time.Time) (*models.Task, error) {
	t, err := Get(ctx, st, taskID)
	if err != nil {
		return nil, err
	}
	if !DropDependency(t, depID) {
		return t, nil
	}
	t.UpdatedAt = now
	if err := st.SaveTask(ctx, t); err != nil {
		return nil, fmt.Errorf("task: save %s: %w", taskID, err)
	}
	if err := project.Record(ctx, st, t.Project, "removed_dependency",
		fmt.Sprintf("%s no longer depends on %s", taskID, depID), userID, now); err != nil && !store.IsNotFound(err) {
		return nil, fmt.Errorf("task: %w", err)
	}
	return t, nil
}

// createsCycle reports whether from is reachable from to along dependency
// edges, in which case adding from -> to closes a cycle.
func createsCycle(ctx context.Context, st store.Store, from, to string) (bool, error) {
	seen := map[string]bool{}
	stack := []string{to}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == from {
			return true, nil
		}
		if seen[id] {
			continue
		}
		seen[id] = true

		t, err := st.GetTask(ctx, id)
		if err != nil {
			if store.IsNotFound(err) {
				continue
			}
			return false, fmt.Errorf("task: walk dependencies at %s: %w", id, err)
		}
		for _, d := range t.Dependencies {
			if !seen[d.Task] {
				stack = append(stack, d.Task)
			}
		}
	}
	return false, nil
}
