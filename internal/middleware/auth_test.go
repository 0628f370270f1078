package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-hub-api/internal/constants"
	"github.com/yukikurage/project-hub-api/internal/models"
	"github.com/yukikurage/project-hub-api/internal/services"
)

type stubResolver struct {
	principals map[string]*models.Principal
	calls      []models.PrincipalKind
}

func (r *stubResolver) ResolvePrincipal(token string, kind models.PrincipalKind) (*models.Principal, error) {
	r.calls = append(r.calls, kind)
	if token == "garbage" {
		return nil, services.ErrInvalidToken
	}
	p, ok := r.principals[token]
	if !ok || p.Kind != kind {
		return nil, services.ErrPrincipalNotFound
	}
	return p, nil
}

func newGateRouter(resolver PrincipalResolver, kinds ...models.PrincipalKind) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	r.GET("/login", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(constants.SessionKeyToken, c.Query("token"))
		if err := session.Save(); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	r.GET("/protected", RequirePrincipal(resolver, kinds...), func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"kind": p.Kind, "id": p.ID})
	})
	return r
}

func TestRequirePrincipal(t *testing.T) {
	resolver := &stubResolver{principals: map[string]*models.Principal{
		"dev-token":    {ID: 7, Kind: models.KindDeveloper},
		"client-token": {ID: 9, Kind: models.KindClient},
	}}

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "missing token", header: "", status: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer garbage", status: http.StatusUnauthorized},
		{name: "wrong kind", header: "Bearer client-token", status: http.StatusForbidden},
		{name: "accepted kind", header: "Bearer dev-token", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newGateRouter(resolver, models.KindAdmin, models.KindManager, models.KindDeveloper)
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRequirePrincipal_TriesKindsInOrder(t *testing.T) {
	resolver := &stubResolver{principals: map[string]*models.Principal{
		"dev-token": {ID: 7, Kind: models.KindDeveloper},
	}}
	r := newGateRouter(resolver, models.KindAdmin, models.KindManager, models.KindDeveloper)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer dev-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []models.PrincipalKind{models.KindAdmin, models.KindManager, models.KindDeveloper}, resolver.calls)
}

func TestRequirePrincipal_SessionFallback(t *testing.T) {
	resolver := &stubResolver{principals: map[string]*models.Principal{
		"dev-token": {ID: 7, Kind: models.KindDeveloper},
	}}
	r := newGateRouter(resolver, models.KindDeveloper)

	login := httptest.NewRequest(http.MethodGet, "/login?token=dev-token", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, login)
	require.Equal(t, http.StatusNoContent, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "expected session cookie to be set")

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":7`)
}

func TestGetPrincipal_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := GetPrincipal(c)
	assert.False(t, ok)
}
