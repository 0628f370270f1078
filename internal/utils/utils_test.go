package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateOTP(6)
		require.NoError(t, err)
		assert.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query      string
		page       int
		limit      int
		wantOffset int
	}{
		{"", 1, 20, 0},
		{"page=3&limit=10", 3, 10, 20},
		{"page=0&limit=1000", 1, 20, 0},
		{"page=abc", 1, 20, 0},
	}

	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/?"+tt.query, nil)

		params := GetPaginationParams(c)
		assert.Equal(t, tt.page, params.Page, tt.query)
		assert.Equal(t, tt.limit, params.Limit, tt.query)
		assert.Equal(t, tt.wantOffset, params.Offset(), tt.query)
	}
}

func TestNewPaginationResponse(t *testing.T) {
	resp := NewPaginationResponse(PaginationParams{Page: 2, Limit: 10}, 21)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, int64(21), resp.Total)

	resp = NewPaginationResponse(PaginationParams{Page: 1, Limit: 10}, 0)
	assert.Zero(t, resp.TotalPages)
}
