package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/taskyard/internal/models"
	"github.com/zulandar/taskyard/internal/project"
	"github.com/zulandar/taskyard/internal/recurrence"
	"github.com/zulandar/taskyard/internal/timetrack"
)

type recurrenceRule struct {
	Frequency   models.Frequency `json:"frequency"`
	Interval    int              `json:"interval"`
	DaysOfWeek  []int            `json:"daysOfWeek"`
	EndDate     *time.Time       `json:"endDate"`
	Occurrences int              `json:"occurrences"`
}

type createTemplateRequest struct {
	createTaskRequest
	Recurrence recurrenceRule `json:"recurrence"`
}

type timeStartRequest struct {
	Notes string `json:"notes"`
}

func (s *server) handleCreateTemplate(c *gin.Context) {
	p := s.authorizeProject(c, c.Param("id"), true)
	if p == nil {
		return
	}
	var req createTemplateRequest
	if err := bindJSON(c, &req, false); err != nil {
		writeError(c, err)
		return
	}
	rule := models.Recurrence{
		Frequency:   req.Recurrence.Frequency,
		Interval:    req.Recurrence.Interval,
		DaysOfWeek:  req.Recurrence.DaysOfWeek,
		EndDate:     req.Recurrence.EndDate,
		Occurrences: req.Recurrence.Occurrences,
	}
	t, err := recurrence.CreateTemplate(c.Request.Context(), s.st, req.opts(p.ID, userID(c)), rule, s.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// handleGenerate runs generation across every project, so the caller must
// administer at least one project.
func (s *server) handleGenerate(c *gin.Context) {
	projects, err := s.st.ListProjects(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	admin := false
	for i := range projects {
		if project.IsAdmin(&projects[i], userID(c)) {
			admin = true
			break
		}
	}
	if !admin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": project.ErrPermissionDenied.Error()})
		return
	}

	now := s.now()
	upTo := now.AddDate(0, 0, s.horizonDays)
	if raw := c.Query("upToDate"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			writeError(c, err)
			return
		}
		upTo = parsed
	}
	res, err := s.gen.CreateInstances(c.Request.Context(), upTo, now)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *server) handleTimeStart(c *gin.Context) {
	if s.authorizeTask(c, false) == nil {
		return
	}
	var req timeStartRequest
	if err := bindJSON(c, &req, true); err != nil {
		writeError(c, err)
		return
	}
	e, err := timetrack.Start(c.Request.Context(), s.st, c.Param("id"), userID(c), req.Notes, s.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (s *server) handleTimeStop(c *gin.Context) {
	if s.authorizeTask(c, false) == nil {
		return
	}
	e, err := timetrack.Stop(c.Request.Context(), s.st, c.Param("id"), userID(c), s.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// parseDate accepts RFC 3339 timestamps or plain dates. A plain date means
// the end of that UTC day.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if d, err := time.Parse("2006-01-02", raw); err == nil {
		return d.Add(24*time.Hour - time.Millisecond), nil
	}
	return time.Time{}, fmt.Errorf("api: invalid date %q: %w", raw, models.ErrInvalidInput)
}
