package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/zulandar/taskyard/internal/logging"
	"github.com/zulandar/taskyard/internal/project"
	"github.com/zulandar/taskyard/internal/timetrack"
)

func writeSQLiteConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "taskyard.yaml")
	body := "database:\n  driver: sqlite\n  path: " + filepath.Join(dir, "taskyard.db") + "\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func execCLI(args ...string) (string, error) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SilenceUsage = true
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCLI(args...)
	if err != nil {
		t.Fatalf("ty %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

var idPattern = regexp.MustCompile(`\b(prj|tsk)-[0-9a-f]{12}\b`)

func firstID(t *testing.T, out string) string {
	t.Helper()
	id := idPattern.FindString(out)
	if id == "" {
		t.Fatalf("no id in output: %s", out)
	}
	return id
}

func setupCLI(t *testing.T) (cfg, projectID string) {
	t.Helper()
	t.Setenv("TASKYARD_USER", "")
	logging.Discard()
	cfg = writeSQLiteConfig(t, t.TempDir())
	runCLI(t, "db", "init", "-c", cfg)
	out := runCLI(t, "project", "create", "-c", cfg, "-u", "alice", "--title", "Launch")
	return cfg, firstID(t, out)
}

func TestWorkflow_HierarchyAndProgress(t *testing.T) {
	cfg, pid := setupCLI(t)

	t1 := firstID(t, runCLI(t, "task", "create", "-c", cfg, "-u", "alice",
		"--project", pid, "--title", "Design", "--due", "2030-01-01"))
	out := runCLI(t, "task", "create", "-c", cfg, "-u", "alice",
		"--project", pid, "--parent", t1, "--title", "Wireframes")
	if !strings.Contains(out, "level 1") {
		t.Errorf("expected subtask at level 1, got: %s", out)
	}
	t2 := firstID(t, out)
	firstID(t, runCLI(t, "task", "create", "-c", cfg, "-u", "alice",
		"--project", pid, "--title", "Build"))

	runCLI(t, "task", "update", t1, "-c", cfg, "-u", "alice", "--status", "Completed")

	show := runCLI(t, "project", "show", pid, "-c", cfg)
	if !strings.Contains(show, "Progress:    50%") {
		t.Errorf("expected 50%% progress, got: %s", show)
	}
	if !strings.Contains(show, "InProgress") {
		t.Errorf("expected project InProgress, got: %s", show)
	}

	list := runCLI(t, "task", "list", "-c", cfg, "--project", pid)
	for _, title := range []string{"Design", "Wireframes", "Build"} {
		if !strings.Contains(list, title) {
			t.Errorf("expected %q in list, got: %s", title, list)
		}
	}

	runCLI(t, "task", "delete", t1, "-c", cfg, "-u", "alice")
	if _, err := execCLI("task", "show", t2, "-c", cfg); err == nil {
		t.Error("expected subtask to be deleted with its parent")
	}
}

func TestWorkflow_DependencyCycleRejected(t *testing.T) {
	cfg, pid := setupCLI(t)
	a := firstID(t, runCLI(t, "task", "create", "-c", cfg, "-u", "alice", "--project", pid, "--title", "A"))
	b := firstID(t, runCLI(t, "task", "create", "-c", cfg, "-u", "alice", "--project", pid, "--title", "B"))

	runCLI(t, "task", "dep", "add", b, a, "-c", cfg, "-u", "alice")
	_, err := execCLI("task", "dep", "add", a, b, "-c", cfg, "-u", "alice")
	if err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}

	show := runCLI(t, "task", "show", b, "-c", cfg)
	if !strings.Contains(show, a) {
		t.Errorf("expected dependency on %s, got: %s", a, show)
	}
	runCLI(t, "task", "dep", "remove", b, a, "-c", cfg, "-u", "alice")

	out := runCLI(t, "task", "health", b, "-c", cfg)
	if !strings.Contains(out, "Health:    on-track") {
		t.Errorf("expected on-track health, got: %s", out)
	}
}

func TestWorkflow_Permissions(t *testing.T) {
	cfg, pid := setupCLI(t)
	id := firstID(t, runCLI(t, "task", "create", "-c", cfg, "-u", "alice", "--project", pid, "--title", "A"))

	_, err := execCLI("task", "create", "-c", cfg, "-u", "bob", "--project", pid, "--title", "B")
	if !errors.Is(err, project.ErrPermissionDenied) {
		t.Fatalf("expected permission denied for non-member, got %v", err)
	}

	runCLI(t, "project", "member", "add", pid, "bob", "--role", "Viewer", "-c", cfg, "-u", "alice")
	if _, err := execCLI("task", "update", id, "-c", cfg, "-u", "bob", "--title", "X"); !errors.Is(err, project.ErrPermissionDenied) {
		t.Errorf("expected viewer update to be denied, got %v", err)
	}

	runCLI(t, "project", "member", "add", pid, "bob", "--role", "Contributor", "-c", cfg, "-u", "alice")
	runCLI(t, "task", "update", id, "-c", cfg, "-u", "bob", "--title", "X")

	if _, err := execCLI("project", "delete", pid, "-c", cfg, "-u", "bob"); !errors.Is(err, project.ErrPermissionDenied) {
		t.Errorf("expected non-creator delete to be denied, got %v", err)
	}
	runCLI(t, "project", "delete", pid, "-c", cfg, "-u", "alice")
	if _, err := execCLI("task", "show", id, "-c", cfg); err == nil {
		t.Error("expected tasks to be deleted with the project")
	}
}

func TestWorkflow_CloneAndChecklist(t *testing.T) {
	cfg, pid := setupCLI(t)
	src := firstID(t, runCLI(t, "task", "create", "-c", cfg, "-u", "alice", "--project", pid, "--title", "Release"))
	runCLI(t, "task", "create", "-c", cfg, "-u", "alice", "--project", pid, "--parent", src, "--title", "Tag")

	out := runCLI(t, "task", "clone", src, "-c", cfg, "-u", "alice", "--subtasks")
	if !strings.Contains(out, "Copy of Release") {
		t.Errorf("expected default clone title, got: %s", out)
	}
	clone := idPattern.FindAllString(out, -1)[1]
	show := runCLI(t, "task", "show", clone, "-c", cfg)
	if !strings.Contains(show, "Subtasks: tsk-") {
		t.Errorf("expected cloned subtask, got: %s", show)
	}

	runCLI(t, "task", "checklist", "add", src, "Write notes", "-c", cfg, "-u", "alice")
	out = runCLI(t, "task", "checklist", "toggle", src, "0", "-c", cfg, "-u", "alice")
	if !strings.Contains(out, "is done") {
		t.Errorf("expected item done, got: %s", out)
	}
	if _, err := execCLI("task", "checklist", "toggle", src, "5", "-c", cfg, "-u", "alice"); err == nil {
		t.Error("expected out-of-range index to fail")
	}

	runCLI(t, "task", "comment", src, "shipping friday", "-c", cfg, "-u", "alice", "--mention", "bob")
	show = runCLI(t, "task", "show", src, "-c", cfg)
	if !strings.Contains(show, "alice: shipping friday") {
		t.Errorf("expected comment in show output, got: %s", show)
	}
	if !strings.Contains(show, "Checklist (100%)") {
		t.Errorf("expected checklist progress, got: %s", show)
	}
}

func TestWorkflow_TimeTracking(t *testing.T) {
	cfg, pid := setupCLI(t)
	id := firstID(t, runCLI(t, "task", "create", "-c", cfg, "-u", "alice", "--project", pid, "--title", "A"))

	runCLI(t, "time", "start", id, "-c", cfg, "-u", "alice", "--notes", "pairing")
	if _, err := execCLI("time", "start", id, "-c", cfg, "-u", "alice"); !errors.Is(err, timetrack.ErrActiveSession) {
		t.Fatalf("expected active session error, got %v", err)
	}

	out := runCLI(t, "time", "list", "-c", cfg, "--open")
	if !strings.Contains(out, "running") {
		t.Errorf("expected running entry, got: %s", out)
	}

	out = runCLI(t, "time", "stop", id, "-c", cfg, "-u", "alice")
	if !strings.Contains(out, "Stopped timer") {
		t.Errorf("expected stop confirmation, got: %s", out)
	}
	if out := runCLI(t, "time", "list", "-c", cfg, "--open"); !strings.Contains(out, "No time entries") {
		t.Errorf("expected no open entries, got: %s", out)
	}
}

func TestWorkflow_RecurringGenerate(t *testing.T) {
	cfg, pid := setupCLI(t)
	out := runCLI(t, "recurring", "create", "-c", cfg, "-u", "alice",
		"--project", pid, "--title", "Standup", "--frequency", "daily")
	if !strings.Contains(out, "daily every 1") {
		t.Errorf("expected rule summary, got: %s", out)
	}

	upTo := time.Now().UTC().AddDate(0, 0, 3).Format("2006-01-02")
	out = runCLI(t, "recurring", "generate", "-c", cfg, "--up-to", upTo)
	if !strings.Contains(out, "Processed 1 templates, created 3 instances") {
		t.Errorf("expected 3 instances, got: %s", out)
	}

	out = runCLI(t, "recurring", "generate", "-c", cfg, "--up-to", upTo)
	if !strings.Contains(out, "created 0 instances") {
		t.Errorf("expected rerun to create nothing, got: %s", out)
	}

	if _, err := execCLI("recurring", "create", "-c", cfg, "-u", "alice",
		"--project", pid, "--title", "Bad", "--frequency", "weekly", "--days", "9"); err == nil {
		t.Error("expected invalid weekday to be rejected")
	}
}
