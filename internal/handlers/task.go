package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/project-hub-api/internal/errors"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/services"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns every task
func (h *TaskHandler) ListTasks(c *gin.Context) {
	tasks, err := h.taskService.ListTasks()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// ListProjectTasks returns the tasks of a project
func (h *TaskHandler) ListProjectTasks(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	tasks, err := h.taskService.ListProjectTasks(projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// ListMyTasks returns the tasks the authenticated developer takes part in
func (h *TaskHandler) ListMyTasks(c *gin.Context) {
	developer, ok := currentPrincipal(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListDeveloperTasks(developer.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// GetTask returns a specific task by ID with its update log and final result
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// CreateTask creates a new task in a project
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		ProjectID    uint64    `json:"project_id" binding:"required"`
		TaskName     string    `json:"task_name" binding:"required"`
		Description  string    `json:"description"`
		StartDate    time.Time `json:"start_date" binding:"required"`
		EndDate      time.Time `json:"end_date" binding:"required"`
		Status       string    `json:"status"`
		DeveloperIDs []uint64  `json:"developer_ids"`
	}

	var req CreateTaskRequest
	if !bindRequest(c, &req) {
		return
	}
	docs, closeFiles, ok := formFiles(c, fieldRelatedDocs)
	if !ok {
		return
	}
	defer closeFiles()

	task, err := h.taskService.CreateTask(c.Request.Context(), actor, services.CreateTaskInput{
		ProjectID:    req.ProjectID,
		TaskName:     req.TaskName,
		Description:  req.Description,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Status:       models.WorkStatus(req.Status),
		DeveloperIDs: req.DeveloperIDs,
		Docs:         docs,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// UpdateTask updates an existing task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		TaskName     *string    `json:"task_name"`
		Description  *string    `json:"description"`
		StartDate    *time.Time `json:"start_date"`
		EndDate      *time.Time `json:"end_date"`
		Status       *string    `json:"status"`
		DeveloperIDs *[]uint64  `json:"developer_ids"`
		RemoveDocs   []string   `json:"remove_docs"`
	}

	var req UpdateTaskRequest
	if !bindRequest(c, &req) {
		return
	}
	docs, closeFiles, ok := formFiles(c, fieldRelatedDocs)
	if !ok {
		return
	}
	defer closeFiles()

	input := services.UpdateTaskInput{
		TaskName:     req.TaskName,
		Description:  req.Description,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		DeveloperIDs: req.DeveloperIDs,
		Docs:         docs,
		RemoveDocs:   req.RemoveDocs,
	}
	if req.Status != nil {
		status := models.WorkStatus(*req.Status)
		input.Status = &status
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), actor, id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask deletes a task with its calendar event and stored files
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// AddProgress appends an entry to a task's update log
func (h *TaskHandler) AddProgress(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	type ProgressRequest struct {
		Content string `json:"content" binding:"required"`
	}

	var req ProgressRequest
	if !bindRequest(c, &req) {
		return
	}
	media, closeFiles, ok := formFiles(c, fieldMedia)
	if !ok {
		return
	}
	defer closeFiles()

	progress, err := h.taskService.AddProgress(c.Request.Context(), actor, id, services.ProgressInput{
		Content: req.Content,
		Media:   media,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, progress)
}

// DeleteProgress removes an entry from a task's update log
func (h *TaskHandler) DeleteProgress(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	updateID := c.Param("update_id")
	if updateID == "" {
		apierrors.BadRequest(c, "Invalid update_id")
		return
	}

	if err := h.taskService.DeleteProgress(c.Request.Context(), id, updateID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task update deleted successfully"})
}

// AddFinalResult records a task's final result and completes it
func (h *TaskHandler) AddFinalResult(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	type FinalResultRequest struct {
		Description string `json:"description" binding:"required"`
	}

	var req FinalResultRequest
	if !bindRequest(c, &req) {
		return
	}
	images, closeFiles, ok := formFiles(c, fieldResultImages)
	if !ok {
		return
	}
	defer closeFiles()

	task, err := h.taskService.AddFinalResult(c.Request.Context(), actor, id, services.FinalResultInput{
		Description: req.Description,
		Images:      images,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// SuggestTasks drafts task suggestions for a project using AI
func (h *TaskHandler) SuggestTasks(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	type SuggestTasksRequest struct {
		Instructions string `json:"instructions"`
	}

	var req SuggestTasksRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BadRequest(c, "Invalid request body")
			return
		}
	}

	drafts, err := h.taskService.SuggestTasks(c.Request.Context(), projectID, req.Instructions)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": drafts,
	})
}
