package metrics

import "testing"

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain pattern",
			input:    "/api/v1/search",
			expected: "/api/v1/search",
		},
		{
			name:     "method pattern",
			input:    "GET /api/v1/categories",
			expected: "/api/v1/categories",
		},
		{
			name:     "subtree pattern",
			input:    "/static/",
			expected: "/static/",
		},
		{
			name:     "no match",
			input:    "",
			expected: "unmatched",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := routeLabel(tt.input)
			if got != tt.expected {
				t.Fatalf("routeLabel(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
