package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/taskyard/internal/health"
	"github.com/zulandar/taskyard/internal/models"
	"github.com/zulandar/taskyard/internal/task"
)

type createTaskRequest struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Category       string          `json:"category"`
	ParentTask     string          `json:"parentTask"`
	Priority       models.Priority `json:"priority"`
	DueDate        *time.Time      `json:"dueDate"`
	EstimatedHours *float64        `json:"estimatedHours"`
	AssignedTo     []string        `json:"assignedTo"`
	Tags           []string        `json:"tags"`
}

func (r createTaskRequest) opts(projectID, user string) task.CreateOpts {
	return task.CreateOpts{
		Title:          r.Title,
		Description:    r.Description,
		Category:       r.Category,
		Project:        projectID,
		ParentTask:     r.ParentTask,
		Priority:       r.Priority,
		DueDate:        r.DueDate,
		EstimatedHours: r.EstimatedHours,
		AssignedTo:     r.AssignedTo,
		Tags:           r.Tags,
		CreatedBy:      user,
	}
}

type updateTaskRequest struct {
	Title          *string            `json:"title"`
	Description    *string            `json:"description"`
	Category       *string            `json:"category"`
	Tags           *[]string          `json:"tags"`
	Status         *models.TaskStatus `json:"status"`
	Priority       *models.Priority   `json:"priority"`
	DueDate        *time.Time         `json:"dueDate"`
	ClearDueDate   bool               `json:"clearDueDate"`
	EstimatedHours *float64           `json:"estimatedHours"`
	ActualHours    *float64           `json:"actualHours"`
	AssignedTo     *[]string          `json:"assignedTo"`
}

type dependencyRequest struct {
	Type  models.RelationType `json:"type"`
	Delay float64             `json:"delay"`
}

type cloneRequest struct {
	Title              string `json:"title"`
	AdjustDates        *bool  `json:"adjustDates"`
	DateOffset         int    `json:"dateOffset"`
	IncludeAssignees   bool   `json:"includeAssignees"`
	IncludeAttachments bool   `json:"includeAttachments"`
	IncludeSubtasks    bool   `json:"includeSubtasks"`
}

type commentRequest struct {
	Text     string   `json:"text"`
	Mentions []string `json:"mentions"`
}

type checklistRequest struct {
	Title string `json:"title"`
}

type attachmentRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
}

func (s *server) handleCreateTask(c *gin.Context) {
	p := s.authorizeProject(c, c.Param("id"), true)
	if p == nil {
		return
	}
	var req createTaskRequest
	if err := bindJSON(c, &req, false); err != nil {
		writeError(c, err)
		return
	}
	t, err := task.Create(c.Request.Context(), s.st, req.opts(p.ID, userID(c)), s.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *server) handleGetTask(c *gin.Context) {
	t := s.authorizeTask(c, false)
	if t == nil {
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *server) handleUpdateTask(c *gin.Context) {
	if s.authorizeTask(c, true) == nil {
		return
	}
	var req updateTaskRequest
	if err := bindJSON(c, &req, false); err != nil {
		writeError(c, err)
		return
	}
	t, err := task.Update(c.Request.Context(), s.st, c.Param("id"), userID(c), task.UpdateOpts{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Tags:           req.Tags,
		Status:         req.Status,
		Priority:       req.Priority,
		DueDate:        req.DueDate,
		ClearDueDate:   req.ClearDueDate,
		EstimatedHours: req.EstimatedHours,
		ActualHours:    req.ActualHours,
		AssignedTo:     req.AssignedTo,
	}, s.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *server) handleDeleteTask(c *gin.Context) {
	if s.authorizeTask(c, true) == nil {
		return
	}
	if err := task.DeleteCascade(c.Request.Context(), s.st, c.Param("id"), userID(c), s.now()); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *server) handleAddDependency(c *gin.Context) {
	if s.authorizeTask(c, true) == nil {
		return
	}
	var req dependencyRequest
	if err := bindJSON(c, &req, true); err != nil {
		writeError(c, err)
		return
	}
	t, err := task.AddDependency(c.Request.Context(), s.st, c.Param("id"), c.Param("depId"),
		req.Type, req.Delay, userID(c), s.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *server) handleRemoveDependency(c *gin.Context) {
	if s.authorizeTask(c, true) == nil {
		return
	}
	t, err := task.RemoveDependency(c.Request.Context(), s.st, c.Param("id"), c.Param("depId"), userID(c), s.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *server) handleClone(c *gin.Context) {
	if s.authorizeTask(c, true) == nil {
		return
	}
	var req cloneRequest
	if err := bindJSON(c, &req, true); err != nil {
		writeError(c, err)
		return
	}
	t, err := task.Clone(c.Request.Context(), s.st, c.Param("id"), userID(c), task.CloneOpts{
		Title:              req.Title,
		SkipDueDate:        req.AdjustDates != nil && !*req.AdjustDates,
		DateOffset:         req.DateOffset,
		IncludeAssignees:   req.IncludeAssignees,
		IncludeAttachments: req.IncludeAttachments,
		IncludeSubtasks:    req.IncludeSubtasks,
	}, s.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *server) handleHealth(c *gin.Context) {
	if s.authorizeTask(c, false) == nil {
		return
	}
	t, err := health.Recalculate(c.Request.Context(), s.st, c.Param("id"), s.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": t.Health.Status, "factors": t.Health.Factors})
}

func (s *server) handleAddComment(c *gin.Context) {
	if s.authorizeTask(c, false) == nil {
		return
	}
	var req commentRequest
	if err := bindJSON(c, &req, false); err != nil {
		writeError(c, err)
		return
	}
	comment, err := task.AddComment(c.Request.Context(), s.st, c.Param("id"), userID(c), req.Text, req.Mentions, s.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (s *server) handleAddChecklistItem(c *gin.Context) {
	if s.authorizeTask(c, true) == nil {
		return
	}
	var req checklistRequest
	if err := bindJSON(c, &req, false); err != nil {
		writeError(c, err)
		return
	}
	t, err := task.AddChecklistItem(c.Request.Context(), s.st, c.Param("id"), req.Title, s.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *server) handleToggleChecklistItem(c *gin.Context) {
	if s.authorizeTask(c, true) == nil {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		writeError(c, fmt.Errorf("api: checklist index %q: %w", c.Param("index"), models.ErrInvalidInput))
		return
	}
	t, err := task.ToggleChecklistItem(c.Request.Context(), s.st, c.Param("id"), index, userID(c), s.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *server) handleAddAttachment(c *gin.Context) {
	if s.authorizeTask(c, true) == nil {
		return
	}
	var req attachmentRequest
	if err := bindJSON(c, &req, false); err != nil {
		writeError(c, err)
		return
	}
	a, err := task.AddAttachment(c.Request.Context(), s.st, c.Param("id"), userID(c),
		task.AttachmentOpts{Name: req.Name, URL: req.URL, Type: req.Type}, s.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}
