package overpass

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_StatusURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"https://overpass-api.de/api/interpreter", "https://overpass-api.de/api/status"},
		{"https://overpass-api.de/api/interpreter/", "https://overpass-api.de/api/status"},
		{"http://localhost:8080", "http://localhost:8080/status"},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			assert.Equal(t, tt.want, NewClient(tt.base).StatusURL())
		})
	}
}

func TestClient_Status(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/status" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("Connected as: 1\n2 slots available now.\n"))
	}))
	defer mockServer.Close()

	client := newTestClient(mockServer.URL + "/api/interpreter")
	require.NoError(t, client.Status(context.Background()))

	broken := newTestClient(mockServer.URL + "/other/interpreter")
	err := broken.Status(context.Background())
	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, http.StatusNotFound, netErr.StatusCode)
}
