package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-hub-api/internal/dto"
	apierrors "github.com/yukikurage/project-hub-api/internal/errors"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/services"
	"github.com/yukikurage/project-hub-api/internal/utils"
)

// ProjectHandler serves projects.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// CreateProject creates a project with optional related documents.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	type CreateProjectRequest struct {
		Title        string     `json:"title" binding:"required"`
		Description  string     `json:"description"`
		Deadline     *time.Time `json:"deadline"`
		Status       string     `json:"status"`
		DeveloperIDs []uint64   `json:"developer_ids"`
	}

	var req CreateProjectRequest
	if !bindRequest(c, &req) {
		return
	}
	docs, closeFiles, ok := formFiles(c, fieldRelatedDocs)
	if !ok {
		return
	}
	defer closeFiles()

	project, err := h.projectService.Create(c.Request.Context(), actor, services.ProjectInput{
		Title:        req.Title,
		Description:  req.Description,
		Deadline:     req.Deadline,
		Status:       models.WorkStatus(req.Status),
		DeveloperIDs: req.DeveloperIDs,
		Docs:         docs,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, project)
}

// ListProjects returns a page of projects, newest first.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	projects, total, err := h.projectService.List(&params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProjectListResponse{
		Projects:   projects,
		Pagination: utils.NewPaginationResponse(params, total),
	})
}

// ListProjectsByStatus filters projects by the status query parameter.
func (h *ProjectHandler) ListProjectsByStatus(c *gin.Context) {
	status := c.Query("status")
	if status == "" {
		apierrors.BadRequest(c, "status query parameter is required")
		return
	}

	projects, err := h.projectService.ListByStatus(models.WorkStatus(status))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// GetProject returns a project by ID.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// GetAssignedDevelopers lists the developers assigned to a project.
func (h *ProjectHandler) GetAssignedDevelopers(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	developers, err := h.projectService.AssignedDevelopers(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPrincipalSummaries(developers))
}

// UpdateProject edits a project. New documents are appended; documents listed
// in remove_docs are deleted.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	type UpdateProjectRequest struct {
		Title         *string    `json:"title"`
		Description   *string    `json:"description"`
		Deadline      *time.Time `json:"deadline"`
		ClearDeadline bool       `json:"clear_deadline"`
		Status        *string    `json:"status"`
		DeveloperIDs  *[]uint64  `json:"developer_ids"`
		RemoveDocs    []string   `json:"remove_docs"`
	}

	var req UpdateProjectRequest
	if !bindRequest(c, &req) {
		return
	}
	docs, closeFiles, ok := formFiles(c, fieldRelatedDocs)
	if !ok {
		return
	}
	defer closeFiles()

	input := services.ProjectUpdateInput{
		Title:         req.Title,
		Description:   req.Description,
		Deadline:      req.Deadline,
		ClearDeadline: req.ClearDeadline,
		DeveloperIDs:  req.DeveloperIDs,
		Docs:          docs,
		RemoveDocs:    req.RemoveDocs,
	}
	if req.Status != nil {
		status := models.WorkStatus(*req.Status)
		input.Status = &status
	}

	project, err := h.projectService.Update(c.Request.Context(), actor, id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// DeleteProject deletes a project with its events and documents.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}

// UpdateProjectStatus lets an assigned developer change a project's status.
func (h *ProjectHandler) UpdateProjectStatus(c *gin.Context) {
	developer, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	type StatusRequest struct {
		Status string `json:"status" binding:"required"`
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.UpdateStatusByDeveloper(developer, id, models.WorkStatus(req.Status))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// ListMyProjects returns the projects of the authenticated developer or client.
func (h *ProjectHandler) ListMyProjects(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	switch principal.Kind {
	case models.KindClient:
		projects, err := h.projectService.ClientProjects(principal.ID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, projects)
	default:
		projects, err := h.projectService.DeveloperProjects(principal.ID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, projects)
	}
}
