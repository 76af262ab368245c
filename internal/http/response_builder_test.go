package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Custom", "value").
		Body(map[string]int{"count": 3}).
		Write(w)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "value", w.Header().Get("X-Custom"))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"count":3}`, w.Body.String())
}

func TestJSONResponseBuilder_EncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().Body(map[string]any{"bad": make(chan int)}).Write(w)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"failed to encode response"}`, w.Body.String())
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		builder *JSONResponseBuilder
		status  int
		body    string
	}{
		{"bad request", BadRequestError("missing yearMonth"), http.StatusBadRequest, `{"error":"missing yearMonth"}`},
		{"unauthorized", UnauthorizedError("invalid admin token"), http.StatusUnauthorized, `{"error":"invalid admin token"}`},
		{"not found", NotFoundError("data not found"), http.StatusNotFound, `{"error":"data not found"}`},
		{"internal", InternalServerError("failed to fetch data"), http.StatusInternalServerError, `{"error":"failed to fetch data"}`},
		{"success", SuccessResponse("data saved"), http.StatusOK, `{"success":true,"message":"data saved"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestMethodNotAllowedError(t *testing.T) {
	w := httptest.NewRecorder()
	MethodNotAllowedError("GET", "POST").Write(w)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "GET, POST", w.Header().Get("Allow"))

	w = httptest.NewRecorder()
	MethodNotAllowedError().Write(w)
	assert.Empty(t, w.Header().Get("Allow"))
}
