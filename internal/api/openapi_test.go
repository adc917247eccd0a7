package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAPIHandler(t *testing.T) {
	handler := OpenAPIHandler()

	tests := []struct {
		name         string
		method       string
		expectStatus int
	}{
		{"GET returns OpenAPI document", http.MethodGet, http.StatusOK},
		{"POST not allowed", http.MethodPost, http.StatusMethodNotAllowed},
		{"DELETE not allowed", http.MethodDelete, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(tt.method, "/api/v1/openapi.json", nil))
			assert.Equal(t, tt.expectStatus, w.Code)
		})
	}
}

func TestOpenAPIDocument(t *testing.T) {
	doc, err := loadOpenAPI()
	require.NoError(t, err)

	var parsed struct {
		OpenAPI string                    `json:"openapi"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(doc, &parsed))

	assert.Equal(t, "3.0.3", parsed.OpenAPI)
	for _, path := range []string{"/api/v1/search", "/api/v1/categories", "/healthz", "/readyz"} {
		assert.Contains(t, parsed.Paths, path)
	}
	assert.Contains(t, parsed.Paths["/api/v1/search"], "get")
}
