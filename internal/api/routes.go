package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/taskyard/internal/models"
	"github.com/zulandar/taskyard/internal/project"
)

// registerRoutes sets up all API routes on the Gin router.
func registerRoutes(router *gin.Engine, s *server) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/", requireUser())

	// Projects.
	api.POST("/projects", s.handleCreateProject)
	api.GET("/projects/:id", s.handleGetProject)
	api.DELETE("/projects/:id", s.handleDeleteProject)
	api.POST("/projects/:id", s.handleCreateTask)
	api.GET("/projects/:id/tasks", s.handleListTasks)
	api.POST("/projects/:id/members", s.handleAddMember)
	api.DELETE("/projects/:id/members/:user", s.handleRemoveMember)

	// Tasks.
	api.GET("/tasks/:id", s.handleGetTask)
	api.PATCH("/tasks/:id", s.handleUpdateTask)
	api.DELETE("/tasks/:id", s.handleDeleteTask)
	api.POST("/tasks/:id/dependencies/:depId", s.handleAddDependency)
	api.DELETE("/tasks/:id/dependencies/:depId", s.handleRemoveDependency)
	api.POST("/tasks/:id/clone", s.handleClone)
	api.POST("/tasks/:id/health", s.handleHealth)
	api.POST("/tasks/:id/comments", s.handleAddComment)
	api.POST("/tasks/:id/checklist", s.handleAddChecklistItem)
	api.POST("/tasks/:id/checklist/:index/toggle", s.handleToggleChecklistItem)
	api.POST("/tasks/:id/attachments", s.handleAddAttachment)

	// Time tracking.
	api.POST("/tasks/:id/time/start", s.handleTimeStart)
	api.POST("/tasks/:id/time/stop", s.handleTimeStop)

	// Recurrence.
	api.POST("/recurring/projects/:id", s.handleCreateTemplate)
	api.POST("/recurring/generate", s.handleGenerate)
}

// authorizeProject loads the project and checks the caller's role. It
// writes the error response and returns nil when access is refused.
func (s *server) authorizeProject(c *gin.Context, projectID string, edit bool) *models.Project {
	p, err := project.Get(c.Request.Context(), s.st, projectID)
	if err != nil {
		writeError(c, err)
		return nil
	}
	user := userID(c)
	allowed := project.IsMember(p, user)
	if edit {
		allowed = project.CanEdit(p, user)
	}
	if !allowed {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": project.ErrPermissionDenied.Error()})
		return nil
	}
	return p
}

// authorizeTask loads the task and checks the caller's role in its
// project.
func (s *server) authorizeTask(c *gin.Context, edit bool) *models.Task {
	t, err := s.st.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return nil
	}
	if s.authorizeProject(c, t.Project, edit) == nil {
		return nil
	}
	return t
}
