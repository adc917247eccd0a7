package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
)

const contentTypeKey contextKey = "negotiatedContentType"

// Representations offered by the search API.
const (
	ContentJSON = "application/json"
	ContentHTML = "text/html"
	ContentText = "text/plain"
)

// ContentNegotiation picks the response representation once per request:
// ?format= wins, then the highest-q Accept entry we can serve, then JSON.
func ContentNegotiation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType := negotiateContentType(r)
		ctx := context.WithValue(r.Context(), contentTypeKey, contentType)
		w.Header().Add("Vary", "Accept")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// NegotiatedContentType returns the representation chosen for r.
func NegotiatedContentType(r *http.Request) string {
	if r == nil {
		return ContentJSON
	}
	if value, ok := r.Context().Value(contentTypeKey).(string); ok && value != "" {
		return value
	}
	return negotiateContentType(r)
}

func negotiateContentType(r *http.Request) string {
	if r == nil {
		return ContentJSON
	}

	if format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format"))); format != "" {
		switch format {
		case "json", ContentJSON:
			return ContentJSON
		case "html", ContentHTML:
			return ContentHTML
		case "text", "txt", ContentText:
			return ContentText
		}
	}

	accept := r.Header.Get("Accept")
	if strings.TrimSpace(accept) == "" {
		return ContentJSON
	}

	bestType := ""
	bestQ := -1.0
	for _, part := range strings.Split(accept, ",") {
		mediaType, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		q := 1.0
		for _, seg := range strings.Split(params, ";") {
			seg = strings.TrimSpace(seg)
			if value, ok := strings.CutPrefix(seg, "q="); ok {
				if parsed, err := strconv.ParseFloat(value, 64); err == nil {
					q = parsed
				}
			}
		}

		candidate := normalizeMediaType(mediaType)
		if candidate == "" || q <= 0 {
			continue
		}
		if q > bestQ {
			bestQ = q
			bestType = candidate
		}
	}

	if bestType == "" {
		return ContentJSON
	}
	return bestType
}

func normalizeMediaType(mediaType string) string {
	switch strings.ToLower(strings.TrimSpace(mediaType)) {
	case "*/*", ContentJSON, "application/*":
		return ContentJSON
	case ContentHTML, "application/xhtml+xml":
		return ContentHTML
	case ContentText:
		return ContentText
	default:
		return ""
	}
}
