package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zulandar/taskyard/internal/models"
	"github.com/zulandar/taskyard/internal/store"
)

// AttachmentOpts describes an uploaded file reference.
type AttachmentOpts struct {
	Name string
	URL  string
	Type string
}

// AddComment appends a comment by author. Mentions are de-duplicated and
// blanks dropped.
func AddComment(ctx context.Context, st store.Store, taskID, author, text string, mentions []string, now time.Time) (*models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("task: comment text is required: %w", models.ErrInvalidInput)
	}
	t, err := Get(ctx, st, taskID)
	if err != nil {
		return nil, err
	}

	c := models.Comment{
		ID:        uuid.NewString(),
		Text:      text,
		Author:    author,
		CreatedAt: now,
		Mentions:  uniqueNonEmpty(mentions),
	}
	t.Comments = append(t.Comments, c)
	t.UpdatedAt = now
	if err := st.SaveTask(ctx, t); err != nil {
		return nil, fmt.Errorf("task: save %s: %w", taskID, err)
	}
	return &c, nil
}

// AddChecklistItem appends an open checklist item.
func AddChecklistItem(ctx context.Context, st store.Store, taskID, title string, now time.Time) (*models.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("task: checklist title is required: %w", models.ErrInvalidInput)
	}
	t, err := Get(ctx, st, taskID)
	if err != nil {
		return nil, err
	}
	t.Checklist = append(t.Checklist, models.ChecklistItem{Title: title})
	t.UpdatedAt = now
	if err := st.SaveTask(ctx, t); err != nil {
		return nil, fmt.Errorf("task: save %s: %w", taskID, err)
	}
	return t, nil
}

// ToggleChecklistItem flips the item at index. Completing stamps the time
// and user; reopening clears them.
func ToggleChecklistItem(ctx context.Context, st store.Store, taskID string, index int, userID string, now time.Time) (*models.Task, error) {
	t, err := Get(ctx, st, taskID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(t.Checklist) {
		return nil, fmt.Errorf("task: checklist index %d out of range [0,%d): %w", index, len(t.Checklist), models.ErrInvalidInput)
	}

	item := &t.Checklist[index]
	item.Completed = !item.Completed
	if item.Completed {
		at := now
		item.CompletedAt = &at
		item.CompletedBy = userID
	} else {
		item.CompletedAt = nil
		item.CompletedBy = ""
	}
	t.UpdatedAt = now
	if err := st.SaveTask(ctx, t); err != nil {
		return nil, fmt.Errorf("task: save %s: %w", taskID, err)
	}
	return t, nil
}

// AddAttachment records a file reference uploaded by userID.
func AddAttachment(ctx context.Context, st store.Store, taskID, userID string, opts AttachmentOpts, now time.Time) (*models.Attachment, error) {
	if opts.Name == "" || opts.URL == "" {
		return nil, fmt.Errorf("task: attachment name and url are required: %w", models.ErrInvalidInput)
	}
	t, err := Get(ctx, st, taskID)
	if err != nil {
		return nil, err
	}
	a := models.Attachment{
		ID:         uuid.NewString(),
		Name:       opts.Name,
		URL:        opts.URL,
		Type:       opts.Type,
		UploadedBy: userID,
		UploadedAt: now,
	}
	t.Attachments = append(t.Attachments, a)
	t.UpdatedAt = now
	if err := st.SaveTask(ctx, t); err != nil {
		return nil, fmt.Errorf("task: save %s: %w", taskID, err)
	}
	return &a, nil
}

func uniqueNonEmpty(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
