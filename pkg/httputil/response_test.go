package httputil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"message": "success"}

	err := WriteJSON(w, http.StatusOK, data)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"success"}`, w.Body.String())
}

func TestWriteText(t *testing.T) {
	w := httptest.NewRecorder()

	assert.NoError(t, WriteText(w, http.StatusOK, "package p {\n}\n"))
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "package p {\n}\n", w.Body.String())
}

func TestWriteErrors(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		body   string
	}{
		{"error", func(w http.ResponseWriter) { WriteError(w, http.StatusConflict, errors.New("test error")) }, http.StatusConflict, `{"error":"test error"}`},
		{"bad request", func(w http.ResponseWriter) { WriteBadRequest(w, "bad") }, http.StatusBadRequest, `{"error":"bad"}`},
		{"not found", func(w http.ResponseWriter) { WriteNotFoundError(w, "missing") }, http.StatusNotFound, `{"error":"missing"}`},
		{"internal", func(w http.ResponseWriter) { WriteInternalError(w, errors.New("boom")) }, http.StatusInternalServerError, `{"error":"boom"}`},
		{"unavailable", func(w http.ResponseWriter) { WriteServiceUnavailable(w, "down") }, http.StatusServiceUnavailable, `{"error":"down"}`},
		{"detailed", func(w http.ResponseWriter) {
			WriteDetailedError(w, http.StatusBadRequest, errors.New("parse failed"), map[string]string{"line": "3"})
		}, http.StatusBadRequest, `{"error":"parse failed","details":{"line":"3"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}
