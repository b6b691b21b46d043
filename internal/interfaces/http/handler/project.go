package handler

import (
	"context"

	projectapp "github.com/ddmpress/backend/internal/application/project"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProjectHandler handles project-related API endpoints
type ProjectHandler struct {
	BaseHandler
	projectService *projectapp.ProjectService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projectService *projectapp.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// Get retrieves a project by ID
func (h *ProjectHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	project, err := h.projectService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, project)
}

// GetByBudget retrieves the project created from a budget
func (h *ProjectHandler) GetByBudget(c *gin.Context) {
	budgetID, err := uuid.Parse(c.Param("budgetId"))
	if err != nil {
		h.BadRequest(c, "Invalid budget ID")
		return
	}

	project, err := h.projectService.GetByBudgetID(c.Request.Context(), budgetID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, project)
}

// List lists projects with pagination and filters
func (h *ProjectHandler) List(c *gin.Context) {
	var filter projectapp.ProjectListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	projects, total, err := h.projectService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, projects, total, page, pageSize)
}

// EnsureCatalogCode godoc
// @Summary      Assign the catalog code to a project
// @Description  Synthesizes the catalog code on first call and backfills the
// @Description  project's invoices. Calling it again returns the same code.
// @Tags         projects
// @Produce      json
// @Param        id path string true "Project ID"
// @Success      200 {object} dto.Response
// @Router       /projects/{id}/catalog-code [post]
func (h *ProjectHandler) EnsureCatalogCode(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	project, err := h.projectService.EnsureCatalogCode(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, project)
}

// StartProduction moves a project into production
func (h *ProjectHandler) StartProduction(c *gin.Context) {
	h.transition(c, h.projectService.StartProduction)
}

// Publish marks a project as published
func (h *ProjectHandler) Publish(c *gin.Context) {
	h.transition(c, h.projectService.Publish)
}

// Archive archives a project
func (h *ProjectHandler) Archive(c *gin.Context) {
	h.transition(c, h.projectService.Archive)
}

func (h *ProjectHandler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*projectapp.ProjectResponse, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	project, err := fn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, project)
}
