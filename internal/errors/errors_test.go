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

func TestCycleDetected_Envelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	CycleDetected(c, "dependency would create a cycle", gin.H{"task_id": 1, "depends_on_id": 2})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, c.IsAborted())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, ErrCodeCycleDetected, body["code"])
	assert.Equal(t, "dependency would create a cycle", body["message"])
	assert.Equal(t, map[string]interface{}{"task_id": float64(1), "depends_on_id": float64(2)}, body["details"])
}

func TestHelpers_DefaultMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		send   func(*gin.Context, string)
		status int
		code   string
	}{
		{"unauthorized", Unauthorized, http.StatusUnauthorized, ErrCodeUnauthorized},
		{"forbidden", Forbidden, http.StatusForbidden, ErrCodeForbidden},
		{"not found", NotFound, http.StatusNotFound, ErrCodeNotFound},
		{"unprocessable", UnprocessableEntity, http.StatusUnprocessableEntity, ErrCodeInvalidOperation},
		{"unavailable", ServiceUnavailable, http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			tt.send(c, "")

			assert.Equal(t, tt.status, w.Code)

			var body APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Message)
			assert.Nil(t, body.Details)
		})
	}
}
