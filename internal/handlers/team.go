package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-hub-api/internal/dto"
	apierrors "github.com/yukikurage/project-hub-api/internal/errors"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/services"
)

// TeamHandler serves a manager's team.
type TeamHandler struct {
	teamService *services.TeamService
}

func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// AddMembers adds principals of kind to the authenticated manager's team.
func (h *TeamHandler) AddMembers(kind models.PrincipalKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		manager, ok := currentPrincipal(c)
		if !ok {
			return
		}

		type AddMembersRequest struct {
			IDs []uint64 `json:"ids" binding:"required,min=1"`
		}

		var req AddMembersRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BadRequest(c, "Invalid request body")
			return
		}

		members, err := h.teamService.AddMembers(manager.ID, kind, req.IDs)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Team updated successfully",
			"members": members,
		})
	}
}

// ListMembers lists the authenticated manager's team members of kinds.
func (h *TeamHandler) ListMembers(kinds ...models.PrincipalKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		manager, ok := currentPrincipal(c)
		if !ok {
			return
		}

		members, err := h.teamService.ListMembers(manager.ID, kinds...)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"members": members,
			"count":   len(members),
		})
	}
}

// ListDevelopers returns the developer profiles on the manager's team.
func (h *TeamHandler) ListDevelopers(c *gin.Context) {
	manager, ok := currentPrincipal(c)
	if !ok {
		return
	}

	developers, err := h.teamService.Developers(manager.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPrincipalSummaries(developers))
}
