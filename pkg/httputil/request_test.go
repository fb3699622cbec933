package httputil

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"name":"test","count":2}`, false},
		{"invalid", `{invalid}`, true},
		{"unknown field", `{"name":"test","extra":true}`, true},
		{"empty", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var got sample
			err := ParseJSON(req, &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, sample{Name: "test", Count: 2}, got)
		})
	}
}

func TestParseJSONOrError_TooLarge(t *testing.T) {
	body := `{"name":"` + strings.Repeat("x", 100) + `"}`
	var status int
	handler := MaxBytesMiddleware(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var got sample
		if !ParseJSONOrError(w, r, &got) {
			return
		}
		status = http.StatusOK
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Zero(t, status)
}

func TestReadBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/", bytes.NewReader([]byte("package p {\n}\n")))
	data, err := ReadBody(req)
	require.NoError(t, err)
	assert.Equal(t, "package p {\n}\n", string(data))

	w := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(strings.Repeat("x", 32)))
	req.Body = http.MaxBytesReader(w, req.Body, 8)
	_, err = ReadBody(req)
	assert.ErrorIs(t, err, ErrBodyTooLarge)
}

func TestParsePathString(t *testing.T) {
	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"module": "core/widget"})
	val, err := ParsePathString(req, "module")
	require.NoError(t, err)
	assert.Equal(t, "core/widget", val)

	w := httptest.NewRecorder()
	_, ok := ParsePathStringOrError(w, req, "missing")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
