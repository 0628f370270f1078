package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/services"
)

// CalendarHandler serves calendar events.
type CalendarHandler struct {
	calendarService *services.CalendarService
}

func NewCalendarHandler(calendarService *services.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarService: calendarService}
}

// CreateEvent creates an event owned by the authenticated principal.
func (h *CalendarHandler) CreateEvent(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	type CreateEventRequest struct {
		Title        string                `json:"title" binding:"required"`
		Description  string                `json:"description"`
		EventDate    time.Time             `json:"event_date" binding:"required"`
		EndDate      *time.Time            `json:"end_date"`
		Participants []models.PrincipalRef `json:"participants"`
		EventType    string                `json:"event_type"`
		RelatedID    *uint64               `json:"related_id"`
		Location     string                `json:"location"`
		IsAllDay     bool                  `json:"is_all_day"`
	}

	var req CreateEventRequest
	if !bindRequest(c, &req) {
		return
	}

	event, err := h.calendarService.Create(c.Request.Context(), actor, services.EventInput{
		Title:        req.Title,
		Description:  req.Description,
		EventDate:    req.EventDate,
		EndDate:      req.EndDate,
		Participants: req.Participants,
		EventType:    models.EventType(req.EventType),
		RelatedID:    req.RelatedID,
		Location:     req.Location,
		IsAllDay:     req.IsAllDay,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// UpdateEvent edits an event. Edits to a project deadline event flow back
// into the project.
func (h *CalendarHandler) UpdateEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	type UpdateEventRequest struct {
		Title        *string                `json:"title"`
		Description  *string                `json:"description"`
		EventDate    *time.Time             `json:"event_date"`
		EndDate      *time.Time             `json:"end_date"`
		Participants *[]models.PrincipalRef `json:"participants"`
		Status       *string                `json:"status"`
		Location     *string                `json:"location"`
		IsAllDay     *bool                  `json:"is_all_day"`
	}

	var req UpdateEventRequest
	if !bindRequest(c, &req) {
		return
	}

	input := services.EventUpdateInput{
		Title:        req.Title,
		Description:  req.Description,
		EventDate:    req.EventDate,
		EndDate:      req.EndDate,
		Participants: req.Participants,
		Location:     req.Location,
		IsAllDay:     req.IsAllDay,
	}
	if req.Status != nil {
		status := models.EventStatus(*req.Status)
		input.Status = &status
	}

	event, err := h.calendarService.Update(c.Request.Context(), id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// DeleteEvent deletes an event and notifies its participants.
func (h *CalendarHandler) DeleteEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.calendarService.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully"})
}

// GetEvent returns an event by ID.
func (h *CalendarHandler) GetEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	event, err := h.calendarService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *CalendarHandler) ListEvents(c *gin.Context) {
	events, err := h.calendarService.ListAll()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// ListMyEvents returns the events the authenticated principal created.
func (h *CalendarHandler) ListMyEvents(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	events, err := h.calendarService.ListCreatedBy(principal.Ref())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// ListInvolvingEvents returns the events the authenticated principal created
// or takes part in, flagged with by_me.
func (h *CalendarHandler) ListInvolvingEvents(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	events, err := h.calendarService.ListInvolving(principal.Ref())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// ListMeetings returns the active meetings the authenticated principal is
// invited to.
func (h *CalendarHandler) ListMeetings(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	meetings, err := h.calendarService.ActiveMeetings(principal.Ref())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, meetings)
}
