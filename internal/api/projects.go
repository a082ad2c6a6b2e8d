package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/taskyard/internal/models"
	"github.com/zulandar/taskyard/internal/project"
	"github.com/zulandar/taskyard/internal/store"
)

type createProjectRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Deadline    *time.Time      `json:"deadline"`
	Priority    models.Priority `json:"priority"`
}

type memberRequest struct {
	User string      `json:"user"`
	Role models.Role `json:"role"`
}

func (s *server) handleCreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := bindJSON(c, &req, false); err != nil {
		writeError(c, err)
		return
	}
	p, err := project.Create(c.Request.Context(), s.st, project.CreateOpts{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
		Priority:    req.Priority,
		CreatedBy:   userID(c),
	}, s.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *server) handleGetProject(c *gin.Context) {
	p := s.authorizeProject(c, c.Param("id"), false)
	if p == nil {
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *server) handleDeleteProject(c *gin.Context) {
	if err := project.Delete(c.Request.Context(), s.st, c.Param("id"), userID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *server) handleListTasks(c *gin.Context) {
	p := s.authorizeProject(c, c.Param("id"), false)
	if p == nil {
		return
	}
	tasks, err := s.st.ListTasks(c.Request.Context(), store.TaskFilter{Project: p.ID})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *server) handleAddMember(c *gin.Context) {
	var req memberRequest
	if err := bindJSON(c, &req, false); err != nil {
		writeError(c, err)
		return
	}
	p, err := project.AddMember(c.Request.Context(), s.st, c.Param("id"), userID(c), req.User, req.Role, s.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *server) handleRemoveMember(c *gin.Context) {
	p, err := project.RemoveMember(c.Request.Context(), s.st, c.Param("id"), userID(c), c.Param("user"), s.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
