package middleware

import (
	"errors"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-hub-api/internal/constants"
	apierrors "github.com/yukikurage/project-hub-api/internal/errors"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/services"
)

// PrincipalResolver resolves a token into a principal of the given kind.
type PrincipalResolver interface {
	ResolvePrincipal(token string, kind models.PrincipalKind) (*models.Principal, error)
}

// RequirePrincipal authenticates the request as one of kinds, tried in order.
// The token is read from the Authorization header, falling back to the session.
func RequirePrincipal(resolver PrincipalResolver, kinds ...models.PrincipalKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			apierrors.Unauthorized(c, "")
			return
		}

		for _, kind := range kinds {
			principal, err := resolver.ResolvePrincipal(token, kind)
			if err == nil {
				c.Set(constants.ContextKeyPrincipal, principal)
				c.Next()
				return
			}
			if errors.Is(err, services.ErrInvalidToken) {
				apierrors.Unauthorized(c, "Invalid or expired token")
				return
			}
			if !errors.Is(err, services.ErrPrincipalNotFound) {
				apierrors.InternalError(c, "Failed to authenticate")
				return
			}
		}

		apierrors.Forbidden(c, "")
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}

	session := sessions.Default(c)
	if token, ok := session.Get(constants.SessionKeyToken).(string); ok {
		return token
	}
	return ""
}

// GetPrincipal retrieves the authenticated principal from context
func GetPrincipal(c *gin.Context) (*models.Principal, bool) {
	value, exists := c.Get(constants.ContextKeyPrincipal)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*models.Principal)
	return principal, ok && principal != nil
}
