package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/project-hub-api/internal/errors"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/services"
)

// TaskUpdateHandler serves progress reports on marketing tasks and their comments.
type TaskUpdateHandler struct {
	taskUpdateService *services.TaskUpdateService
}

func NewTaskUpdateHandler(taskUpdateService *services.TaskUpdateService) *TaskUpdateHandler {
	return &TaskUpdateHandler{taskUpdateService: taskUpdateService}
}

// CreateTaskUpdate files a progress report. The author must be assigned to the task.
func (h *TaskUpdateHandler) CreateTaskUpdate(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	type CreateTaskUpdateRequest struct {
		TaskID      uint64               `json:"task_id" binding:"required"`
		Description string               `json:"description" binding:"required"`
		StartDate   *time.Time           `json:"start_date"`
		EndDate     *time.Time           `json:"end_date"`
		LeadsInfo   []models.LeadContact `json:"leads_info"`
	}

	var req CreateTaskUpdateRequest
	if !bindRequest(c, &req) {
		return
	}
	attachments, closeFiles, ok := formFiles(c, fieldAttachments)
	if !ok {
		return
	}
	defer closeFiles()

	update, err := h.taskUpdateService.Create(c.Request.Context(), actor, req.TaskID, services.TaskUpdateInput{
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		LeadsInfo:   req.LeadsInfo,
		Attachments: attachments,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, update)
}

// ListTaskUpdates returns the reports of one marketing task.
func (h *TaskUpdateHandler) ListTaskUpdates(c *gin.Context) {
	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}

	updates, err := h.taskUpdateService.ListByTask(taskID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updates)
}

// ListProjectTaskUpdates returns the reports of every marketing task of a project.
func (h *TaskUpdateHandler) ListProjectTaskUpdates(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	updates, err := h.taskUpdateService.ListByProject(projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updates)
}

// UpdateTaskUpdate edits one of the authenticated principal's reports.
func (h *TaskUpdateHandler) UpdateTaskUpdate(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	type UpdateTaskUpdateRequest struct {
		Description       *string               `json:"description"`
		LeadsInfo         *[]models.LeadContact `json:"leads_info"`
		RemoveAttachments []string              `json:"remove_attachments"`
	}

	var req UpdateTaskUpdateRequest
	if !bindRequest(c, &req) {
		return
	}
	attachments, closeFiles, ok := formFiles(c, fieldAttachments)
	if !ok {
		return
	}
	defer closeFiles()

	update, err := h.taskUpdateService.Update(c.Request.Context(), actor, id, services.TaskUpdateEditInput{
		Description:       req.Description,
		LeadsInfo:         req.LeadsInfo,
		Attachments:       attachments,
		RemoveAttachments: req.RemoveAttachments,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, update)
}

// DeleteTaskUpdate deletes one of the authenticated principal's reports.
func (h *TaskUpdateHandler) DeleteTaskUpdate(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.taskUpdateService.Delete(c.Request.Context(), actor, id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task update deleted successfully"})
}

func (h *TaskUpdateHandler) AddComment(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	type CommentRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	update, err := h.taskUpdateService.AddComment(c.Request.Context(), actor, id, req.Text)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, update)
}

// DeleteComment removes a comment. Admins may remove any comment.
func (h *TaskUpdateHandler) DeleteComment(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	commentID, ok := parseID(c, "comment_id")
	if !ok {
		return
	}

	update, err := h.taskUpdateService.DeleteComment(c.Request.Context(), actor, id, commentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, update)
}
