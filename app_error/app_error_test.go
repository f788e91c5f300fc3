package app_error

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("raw result for %s is negative", "x"), http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("submit: %w", Validation("bad")), http.StatusBadRequest},
		{"not found", NotFound("competition", "c1"), http.StatusNotFound},
		{"gorm not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), http.StatusNotFound},
		{"forbidden", Forbidden("not the organizer"), http.StatusForbidden},
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized},
		{"partial write", &PartialWriteError{Written: 2, Total: 5, Err: errors.New("timeout")}, http.StatusServiceUnavailable},
		{"publish", &PublishError{Err: errors.New("lock")}, http.StatusAccepted},
		{"concurrent publish", ErrConcurrentPublish, http.StatusConflict},
		{"explicit status", WithStatus(errors.New("matcher down"), http.StatusBadGateway), http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestPartialWriteErrorUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := &PartialWriteError{Written: 1, Total: 3, Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "saved 1 of 3")
}

func TestWithHTTPStatusBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	respond := func(err error) (int, map[string]interface{}) {
		recorder := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(recorder)
		WithHTTPStatus(c, err)
		body := map[string]interface{}{}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		return recorder.Code, body
	}

	code, body := respond(&PartialWriteError{Written: 2, Total: 4, Err: errors.New("timeout")})
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, 2.0, body["written"])
	assert.Equal(t, 4.0, body["total"])

	code, body = respond(&PublishError{Err: errors.New("lock")})
	assert.Equal(t, http.StatusAccepted, code)
	assert.Equal(t, true, body["scores_saved"])

	code, body = respond(NotFound("workout", "w9"))
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "workout w9 not found", body["error"])
}
