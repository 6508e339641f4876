package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmonco/mpute/internal/middleware"
	"github.com/mmonco/mpute/internal/models"
	"github.com/mmonco/mpute/internal/selection"
	"github.com/mmonco/mpute/internal/services"
	"github.com/mmonco/mpute/pkg/logger"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// MutateProject is the single project mutation endpoint. The submitted
// form carries an intent discriminant selecting which schema applies;
// exactly one handler runs per request.
func (h *ProjectHandler) MutateProject(c *gin.Context) {
	session := middleware.GetSession(c)
	if session == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	fields := map[string]string{
		"intent":      c.PostForm("intent"),
		"projectId":   c.PostForm("projectId"),
		"name":        c.PostForm("name"),
		"description": c.PostForm("description"),
		"command":     c.PostForm("command"),
	}

	mutation, validationErrs := models.ParseProjectMutation(fields)
	if validationErrs != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": validationErrs})
		return
	}

	var err error
	switch mutation.Intent {
	case models.IntentNew:
		_, err = h.projectService.CreateProject(c.Request.Context(), session.UserID, mutation.New)
	case models.IntentEdit:
		err = h.projectService.EditProject(c.Request.Context(), session.UserID, mutation.Edit)
	case models.IntentDelete:
		err = h.projectService.DeleteProject(c.Request.Context(), session.UserID, mutation.Delete)
	}

	if err != nil {
		h.renderMutationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *ProjectHandler) renderMutationError(c *gin.Context, err error) {
	var verificationErr *services.VerificationError
	var validationErr *models.ValidationError

	switch {
	case errors.As(err, &verificationErr):
		// The verifier's verdict is surfaced to the caller unchanged
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"errors": gin.H{"command": verificationErr.Reason},
		})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"errors": gin.H{validationErr.Field: validationErr.Message},
		})
	case errors.Is(err, services.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
	default:
		logger.WithError(err).Error("Project mutation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// ListAllProjects returns the public catalog of active projects
func (h *ProjectHandler) ListAllProjects(c *gin.Context) {
	session := middleware.GetSession(c)
	if session == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	projects, err := h.projectService.GetAllProjects()
	if err != nil {
		logger.WithError(err).Error("Failed to load project catalog")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load projects"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": projectList(projects),
	})
}

// ListMyProjects returns the requester's projects together with the
// selection state derived from the request. Every round-trip rebuilds
// the selection from scratch, so stale client state cannot survive.
func (h *ProjectHandler) ListMyProjects(c *gin.Context) {
	session := middleware.GetSession(c)
	if session == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	projects, err := h.projectService.GetProjectsByCreator(session.UserID)
	if err != nil {
		logger.WithError(err).Error("Failed to load user projects")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load projects"})
		return
	}

	sel := selection.FromRequest(
		c.Query("compose"),
		c.Query("edit"),
		c.Query("delete"),
		projects,
	)

	c.JSON(http.StatusOK, gin.H{
		"projects":  projectList(projects),
		"selection": sel,
	})
}

func projectList(projects []*models.Project) []*models.Project {
	if projects == nil {
		return []*models.Project{}
	}
	return projects
}
