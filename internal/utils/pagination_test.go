package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/project-hub-api/internal/constants"
)

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query string
		want  PaginationParams
	}{
		{query: "", want: PaginationParams{Page: 1, Limit: constants.DefaultPageSize, Offset: 0}},
		{query: "page=3&limit=10", want: PaginationParams{Page: 3, Limit: 10, Offset: 20}},
		{query: "page=-2&limit=0", want: PaginationParams{Page: 1, Limit: constants.DefaultPageSize, Offset: 0}},
		{query: "page=2&limit=1000", want: PaginationParams{Page: 2, Limit: constants.DefaultPageSize, Offset: constants.DefaultPageSize}},
		{query: "page=abc", want: PaginationParams{Page: 1, Limit: constants.DefaultPageSize, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/?"+tt.query, nil)
			assert.Equal(t, tt.want, GetPaginationParams(c))
		})
	}
}

func TestPaginationParams_Response(t *testing.T) {
	p := NewPaginationParams(1, 10)

	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(10))
	assert.Equal(t, 3, p.TotalPages(21))
	assert.Equal(t, PaginationResponse{Page: 1, Limit: 10, Total: 21, TotalPages: 3}, p.Response(21))
}
