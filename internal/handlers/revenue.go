package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-hub-api/internal/services"
)

// RevenueHandler serves revenue entries.
type RevenueHandler struct {
	revenueService *services.RevenueService
}

func NewRevenueHandler(revenueService *services.RevenueService) *RevenueHandler {
	return &RevenueHandler{revenueService: revenueService}
}

func (h *RevenueHandler) CreateRevenue(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	type CreateRevenueRequest struct {
		ProjectID   *uint64    `json:"project_id"`
		Amount      float64    `json:"revenue_generated" binding:"required"`
		Date        *time.Time `json:"date"`
		Description string     `json:"description"`
	}

	var req CreateRevenueRequest
	if !bindRequest(c, &req) {
		return
	}
	attachments, closeFiles, ok := formFiles(c, fieldAttachments)
	if !ok {
		return
	}
	defer closeFiles()

	revenue, err := h.revenueService.Create(c.Request.Context(), actor, services.RevenueInput{
		ProjectID:   req.ProjectID,
		Amount:      req.Amount,
		Date:        req.Date,
		Description: req.Description,
		Attachments: attachments,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, revenue)
}

func (h *RevenueHandler) ListRevenue(c *gin.Context) {
	entries, err := h.revenueService.List()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// ListProjectRevenue returns the revenue entries of one project.
func (h *RevenueHandler) ListProjectRevenue(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}

	entries, err := h.revenueService.ListByProject(projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// UpdateRevenue edits an entry. Uploaded attachments are appended.
func (h *RevenueHandler) UpdateRevenue(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	type UpdateRevenueRequest struct {
		ProjectID   *uint64    `json:"project_id"`
		Amount      *float64   `json:"revenue_generated"`
		Date        *time.Time `json:"date"`
		Description *string    `json:"description"`
	}

	var req UpdateRevenueRequest
	if !bindRequest(c, &req) {
		return
	}
	attachments, closeFiles, ok := formFiles(c, fieldAttachments)
	if !ok {
		return
	}
	defer closeFiles()

	revenue, err := h.revenueService.Update(c.Request.Context(), actor, id, services.RevenueUpdateInput{
		ProjectID:   req.ProjectID,
		Amount:      req.Amount,
		Date:        req.Date,
		Description: req.Description,
		Attachments: attachments,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, revenue)
}

func (h *RevenueHandler) DeleteRevenue(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.revenueService.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Revenue entry deleted successfully"})
}
