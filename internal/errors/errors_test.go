package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	err := New(http.StatusConflict, "")
	assert.Equal(t, ErrCodeConflict, err.Code)
	assert.Equal(t, "Resource conflict", err.Message)

	err = New(http.StatusNotFound, "Project not found")
	assert.Equal(t, ErrCodeNotFound, err.Code)
	assert.Equal(t, "Project not found", err.Message)

	// unknown statuses keep their status but report an internal error
	err = New(http.StatusTeapot, "")
	assert.Equal(t, http.StatusTeapot, err.Status)
	assert.Equal(t, ErrCodeInternalError, err.Code)
}

func TestRespond_AbortsChain(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	reached := false
	r.GET("/", func(c *gin.Context) {
		Forbidden(c, "")
	}, func(c *gin.Context) {
		reached = true
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, reached)

	var body APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, ErrCodeForbidden, body.Code)
	assert.Equal(t, "Access denied", body.Message)
}
