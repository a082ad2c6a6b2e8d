package task

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zulandar/taskyard/internal/logging"
	"github.com/zulandar/taskyard/internal/project"
	"github.com/zulandar/taskyard/internal/store"
)

// DeleteCascade deletes a task and all of its descendants, children before
// parents. The task is unlinked from its parent or project first; if a
// delete then fails the link is restored so the surviving subtree stays
// reachable. Descendants that are already gone are skipped.
func DeleteCascade(ctx context.Context, st store.Store, id, userID string, now time.Time) error {
	root, err := Get(ctx, st, id)
	if err != nil {
		return err
	}

	order, err := collectSubtree(ctx, st, root.ID, root.Subtasks)
	if err != nil {
		return err
	}

	if err := Unlink(ctx, st, root); err != nil {
		return err
	}

	log := logging.Logger.WithFields(logrus.Fields{"task": root.ID, "project": root.Project})
	for i := len(order) - 1; i >= 0; i-- {
		err := st.DeleteTask(ctx, order[i])
		if err == nil || store.IsNotFound(err) {
			continue
		}
		log.WithError(err).Warnf("cascade delete failed at %s, restoring link", order[i])
		if linkErr := Link(ctx, st, root); linkErr != nil {
			log.WithError(linkErr).Error("restoring link after failed cascade delete")
		}
		return fmt.Errorf("task: delete %s: %w", order[i], err)
	}

	if err := project.Record(ctx, st, root.Project, "deleted_task",
		fmt.Sprintf("deleted task %q and %d subtasks", root.Title, len(order)-1), userID, now); err != nil && !store.IsNotFound(err) {
		return fmt.Errorf("task: %w", err)
	}
	if _, err := project.UpdateProgress(ctx, st, root.Project, now); err != nil && !store.IsNotFound(err) {
		return fmt.Errorf("task: %w", err)
	}
	log.WithField("deleted", len(order)).Info("task deleted")
	return nil
}

// collectSubtree returns rootID and every reachable descendant in preorder,
// walking with an explicit stack. Missing descendants and repeated ids are
// skipped.
func collectSubtree(ctx context.Context, st store.Store, rootID string, children []string) ([]string, error) {
	order := []string{rootID}
	seen := map[string]bool{rootID: true}

	var stack []string
	pushReversed := func(ids []string) {
		for i := len(ids) - 1; i >= 0; i-- {
			stack = append(stack, ids[i])
		}
	}
	pushReversed(children)

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true

		t, err := st.GetTask(ctx, id)
		if err != nil {
			if store.IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("task: load subtask %s: %w", id, err)
		}
		order = append(order, t.ID)
		pushReversed(t.Subtasks)
	}
	return order, nil
}
