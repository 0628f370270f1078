package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-hub-api/internal/constants"
	apierrors "github.com/yukikurage/project-hub-api/internal/errors"
	"github.com/yukikurage/project-hub-api/internal/middleware"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/services"
)

// respondServiceError maps service sentinels onto API errors.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))

	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		apierrors.Unauthorized(c, err.Error())

	case errors.Is(err, services.ErrNotAssigned),
		errors.Is(err, services.ErrNotAssignee),
		errors.Is(err, services.ErrNotTaskUpdateAuthor),
		errors.Is(err, services.ErrNotCommentAuthor),
		errors.Is(err, services.ErrInvalidMessageParty):
		apierrors.Forbidden(c, err.Error())

	case errors.Is(err, services.ErrPrincipalNotFound),
		errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrProgressNotFound),
		errors.Is(err, services.ErrEventNotFound),
		errors.Is(err, services.ErrRelatedProjectGone),
		errors.Is(err, services.ErrHolidayNotFound),
		errors.Is(err, services.ErrMarketingTaskNotFound),
		errors.Is(err, services.ErrTaskUpdateNotFound),
		errors.Is(err, services.ErrCommentNotFound),
		errors.Is(err, services.ErrRevenueNotFound),
		errors.Is(err, services.ErrMessageNotFound),
		errors.Is(err, services.ErrReceiverNotFound),
		errors.Is(err, services.ErrNotificationNotFound):
		apierrors.NotFound(c, err.Error())

	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrHolidayApproved),
		errors.Is(err, services.ErrHolidayClosed):
		apierrors.Conflict(c, err.Error())

	case errors.Is(err, services.ErrInvalidPrincipalKind),
		errors.Is(err, services.ErrUsernameRequired),
		errors.Is(err, services.ErrEmailRequired),
		errors.Is(err, services.ErrInvalidOTP),
		errors.Is(err, services.ErrInvalidMemberKind),
		errors.Is(err, services.ErrTooManyFiles),
		errors.Is(err, services.ErrProjectTitleRequired),
		errors.Is(err, services.ErrInvalidWorkStatus),
		errors.Is(err, services.ErrInvalidDeveloper),
		errors.Is(err, services.ErrTaskNameRequired),
		errors.Is(err, services.ErrTaskDatesOutOfOrder),
		errors.Is(err, services.ErrParticipantsNotInProject),
		errors.Is(err, services.ErrProgressContentRequired),
		errors.Is(err, services.ErrFinalDescriptionRequired),
		errors.Is(err, services.ErrEventTitleRequired),
		errors.Is(err, services.ErrEventDateRequired),
		errors.Is(err, services.ErrEventDateOutOfOrder),
		errors.Is(err, services.ErrInvalidEventType),
		errors.Is(err, services.ErrInvalidEventStatus),
		errors.Is(err, services.ErrInvalidParticipant),
		errors.Is(err, services.ErrHolidayReasonRequired),
		errors.Is(err, services.ErrHolidayDatesOutOfOrder),
		errors.Is(err, services.ErrInvalidHolidayDecision),
		errors.Is(err, services.ErrMarketingNameRequired),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidMarketingStatus),
		errors.Is(err, services.ErrInvalidAssignee),
		errors.Is(err, services.ErrInvalidLeads),
		errors.Is(err, services.ErrMarketingDatesOutOfOrder),
		errors.Is(err, services.ErrCommentTextRequired),
		errors.Is(err, services.ErrTaskUpdateDatesOutOfOrder),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrMessageContentRequired):
		apierrors.BadRequest(c, err.Error())

	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")

	case errors.Is(err, services.ErrUpstream),
		errors.Is(err, services.ErrAIRequestFailed),
		errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.Upstream(c, err.Error())

	default:
		log.Printf("Unhandled error on %s %s: %v", c.Request.Method, c.FullPath(), err)
		apierrors.InternalError(c, "Internal server error")
	}
}

// parseID reads a numeric path parameter. It responds 400 and returns false
// when the value is malformed.
func parseID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, fmt.Sprintf("Invalid %s", name))
		return 0, false
	}
	return id, true
}

// currentPrincipal returns the principal attached by RequirePrincipal.
func currentPrincipal(c *gin.Context) (*models.Principal, bool) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return nil, false
	}
	return principal, true
}
