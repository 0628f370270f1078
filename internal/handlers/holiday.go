package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/project-hub-api/internal/errors"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/services"
)

// HolidayHandler serves holiday requests.
type HolidayHandler struct {
	holidayService *services.HolidayService
}

func NewHolidayHandler(holidayService *services.HolidayService) *HolidayHandler {
	return &HolidayHandler{holidayService: holidayService}
}

// ApplyHoliday files a holiday request for the authenticated developer.
func (h *HolidayHandler) ApplyHoliday(c *gin.Context) {
	developer, ok := currentPrincipal(c)
	if !ok {
		return
	}

	type ApplyRequest struct {
		StartDate time.Time `json:"start_date" binding:"required"`
		EndDate   time.Time `json:"end_date" binding:"required"`
		Reason    string    `json:"reason" binding:"required"`
	}

	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	holiday, event, err := h.holidayService.Apply(c.Request.Context(), developer, services.HolidayInput{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Reason:    req.Reason,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"holiday": holiday,
		"event":   event,
	})
}

// ListMyHolidays returns the authenticated developer's holiday requests.
func (h *HolidayHandler) ListMyHolidays(c *gin.Context) {
	developer, ok := currentPrincipal(c)
	if !ok {
		return
	}

	holidays, err := h.holidayService.ListByDeveloper(developer.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, holidays)
}

// WithdrawHoliday withdraws one of the authenticated developer's requests.
func (h *HolidayHandler) WithdrawHoliday(c *gin.Context) {
	developer, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	holiday, event, err := h.holidayService.Withdraw(developer, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"holiday": holiday,
		"event":   event,
	})
}

// DecideHoliday approves or denies a request.
func (h *HolidayHandler) DecideHoliday(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	type DecisionRequest struct {
		Status string `json:"status" binding:"required"`
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	holiday, err := h.holidayService.Decide(c.Request.Context(), id, models.HolidayStatus(req.Status))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, holiday)
}

// UpdateHoliday edits the dates or reason of a request.
func (h *HolidayHandler) UpdateHoliday(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	type UpdateHolidayRequest struct {
		StartDate *time.Time `json:"start_date"`
		EndDate   *time.Time `json:"end_date"`
		Reason    *string    `json:"reason"`
	}

	var req UpdateHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	holiday, err := h.holidayService.Update(id, services.HolidayUpdateInput{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Reason:    req.Reason,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, holiday)
}

func (h *HolidayHandler) DeleteHoliday(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.holidayService.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Holiday deleted successfully"})
}

func (h *HolidayHandler) GetHoliday(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	holiday, err := h.holidayService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, holiday)
}

// ListHolidays returns every request, newest first.
func (h *HolidayHandler) ListHolidays(c *gin.Context) {
	holidays, err := h.holidayService.List()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, holidays)
}

// ListDeveloperHolidays returns the requests of one developer.
func (h *HolidayHandler) ListDeveloperHolidays(c *gin.Context) {
	developerID, ok := parseID(c, "id")
	if !ok {
		return
	}

	holidays, err := h.holidayService.ListByDeveloper(developerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, holidays)
}
