package httputil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]int{"round": 2})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"round": 2}`, rec.Body.String())
}

func TestErrorResponses(t *testing.T) {
	cases := []struct {
		name   string
		write  func(http.ResponseWriter)
		status int
		body   string
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "invalid year", nil) }, http.StatusBadRequest, `{"error":"invalid year"}`},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "no games", errors.New("empty")) }, http.StatusNotFound, `{"error":"no games"}`},
		{"internal", func(w http.ResponseWriter) { InternalServerError(w, "query failed", errors.New("db down")) }, http.StatusInternalServerError, `{"error":"internal server error"}`},
		{"unavailable", func(w http.ResponseWriter) { ServiceUnavailable(w, "provider unavailable", errors.New("timeout")) }, http.StatusServiceUnavailable, `{"error":"provider unavailable"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.write(rec)
			assert.Equal(t, tc.status, rec.Code)
			assert.JSONEq(t, tc.body, rec.Body.String())
		})
	}
}
