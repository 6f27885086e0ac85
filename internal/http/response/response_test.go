package response

import (
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelverse/panelverse-server/internal/store"
)

func TestJSON_WritesPayloadDirectly(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, map[string]any{"message": "ok", "total_count": 3}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["message"])
	assert.EqualValues(t, 3, body["total_count"])
}

func TestError_DetailBody(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound(rec, "comic not found", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "comic not found", body["detail"])
}

func TestHandleError_MapsStoreErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"not found", store.ErrNotFound, http.StatusNotFound},
		{"forbidden", store.ErrForbidden, http.StatusForbidden},
		{"invalid input", store.ErrInvalidInput, http.StatusBadRequest},
		{"wrapped store error", fmt.Errorf("context: %w", store.ErrNotFound.WithMessage("comic not found")), http.StatusNotFound},
		{"unknown error", fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err, nil)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestHandleError_UnknownErrorHidesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, fmt.Errorf("secret internal state"), nil)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body["detail"])
	assert.NotContains(t, rec.Body.String(), "secret")
}
