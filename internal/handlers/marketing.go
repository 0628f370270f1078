package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/project-hub-api/internal/errors"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/services"
)

// MarketingHandler serves marketing tasks.
type MarketingHandler struct {
	marketingService *services.MarketingService
}

func NewMarketingHandler(marketingService *services.MarketingService) *MarketingHandler {
	return &MarketingHandler{marketingService: marketingService}
}

// CreateMarketingTask creates a marketing task with optional documents.
func (h *MarketingHandler) CreateMarketingTask(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	type CreateMarketingTaskRequest struct {
		TaskName        string                `json:"task_name" binding:"required"`
		TaskDescription string                `json:"task_description"`
		ProjectID       uint64                `json:"project_id" binding:"required"`
		Assignees       []models.PrincipalRef `json:"assignees"`
		Priority        string                `json:"priority"`
		Status          string                `json:"status"`
		StartDate       time.Time             `json:"start_date" binding:"required"`
		EndDate         time.Time             `json:"end_date" binding:"required"`
	}

	var req CreateMarketingTaskRequest
	if !bindRequest(c, &req) {
		return
	}
	docs, closeFiles, ok := formFiles(c, fieldRelatedDocs)
	if !ok {
		return
	}
	defer closeFiles()

	task, err := h.marketingService.Create(c.Request.Context(), actor, services.MarketingTaskInput{
		TaskName:        req.TaskName,
		TaskDescription: req.TaskDescription,
		ProjectID:       req.ProjectID,
		Assignees:       req.Assignees,
		Priority:        models.MarketingPriority(req.Priority),
		Status:          models.MarketingStatus(req.Status),
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		Docs:            docs,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// UpdateMarketingTask edits a marketing task.
func (h *MarketingHandler) UpdateMarketingTask(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	type UpdateMarketingTaskRequest struct {
		TaskName        *string                `json:"task_name"`
		TaskDescription *string                `json:"task_description"`
		Assignees       *[]models.PrincipalRef `json:"assignees"`
		Priority        *string                `json:"priority"`
		Status          *string                `json:"status"`
		StartDate       *time.Time             `json:"start_date"`
		EndDate         *time.Time             `json:"end_date"`
		RemoveDocs      []string               `json:"remove_docs"`
	}

	var req UpdateMarketingTaskRequest
	if !bindRequest(c, &req) {
		return
	}
	docs, closeFiles, ok := formFiles(c, fieldRelatedDocs)
	if !ok {
		return
	}
	defer closeFiles()

	input := services.MarketingTaskUpdateInput{
		TaskName:        req.TaskName,
		TaskDescription: req.TaskDescription,
		Assignees:       req.Assignees,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		Docs:            docs,
		RemoveDocs:      req.RemoveDocs,
	}
	if req.Priority != nil {
		priority := models.MarketingPriority(*req.Priority)
		input.Priority = &priority
	}
	if req.Status != nil {
		status := models.MarketingStatus(*req.Status)
		input.Status = &status
	}

	task, err := h.marketingService.Update(c.Request.Context(), actor, id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *MarketingHandler) ListMarketingTasks(c *gin.Context) {
	tasks, err := h.marketingService.List()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *MarketingHandler) GetMarketingTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	task, err := h.marketingService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// ListProjectMarketingTasks returns the marketing tasks of a project.
func (h *MarketingHandler) ListProjectMarketingTasks(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	tasks, err := h.marketingService.ListByProject(projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// ListAssignedMarketingTasks returns the tasks assigned to the authenticated
// marketing user or content creator.
func (h *MarketingHandler) ListAssignedMarketingTasks(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	tasks, err := h.marketingService.ListAssigned(principal.Ref())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// DeleteMarketingTask deletes a marketing task with its progress reports.
func (h *MarketingHandler) DeleteMarketingTask(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.marketingService.Delete(c.Request.Context(), actor, id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Marketing task deleted successfully"})
}

// UpdateLeads sets the leads counter of a marketing task.
func (h *MarketingHandler) UpdateLeads(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	type LeadsRequest struct {
		Leads *int `json:"leads" binding:"required"`
	}

	var req LeadsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.marketingService.UpdateLeads(c.Request.Context(), actor, id, *req.Leads)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}
