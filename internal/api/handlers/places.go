package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/PetMap-Recife/server/internal/api/middleware"
	"github.com/PetMap-Recife/server/internal/api/problem"
	"github.com/PetMap-Recife/server/internal/domain/places"
	"github.com/PetMap-Recife/server/internal/feed"
	"github.com/PetMap-Recife/server/internal/geolocation"
	"github.com/PetMap-Recife/server/internal/mapview"
	"github.com/PetMap-Recife/server/internal/session"
)

// OSMAttribution is the attribution string required by the OpenStreetMap usage policy
const OSMAttribution = "Data © OpenStreetMap contributors, ODbL 1.0"

// PlacesHandler serves the search API. Every request runs one headless
// session whose map and result region are returned for the browser to draw.
type PlacesHandler struct {
	Searcher      session.Searcher
	View          mapview.View
	DefaultRadius float64
	Timeout       time.Duration
	Env           string
}

func NewPlacesHandler(searcher session.Searcher, view mapview.View, defaultRadius float64, timeout time.Duration, env string) *PlacesHandler {
	if defaultRadius <= 0 {
		defaultRadius = places.DefaultRadiusMeters
	}
	return &PlacesHandler{Searcher: searcher, View: view, DefaultRadius: defaultRadius, Timeout: timeout, Env: env}
}

type searchResponse struct {
	State       feed.State       `json:"state"`
	HTML        string           `json:"html"`
	Markers     []mapview.Marker `json:"markers"`
	View        mapview.View     `json:"view"`
	User        *mapview.Point   `json:"user,omitempty"`
	Attribution string           `json:"attribution"`
}

// Search handles GET /api/v1/search.
//
// Query params:
//   - category: pet, veterinary or dog_park (required)
//   - radius: meters, default 1000
//   - lat, lon: search center, default the configured map center
//   - user_lat, user_lon: browser geolocation; when present the search runs
//     around the user as on first page load
//   - geo_error: browser geolocation failure reason
//   - zoom: the client's current zoom, kept unless the session recenters on the user
//
// Provider failures are part of the result (state "error"), not HTTP errors.
func (h *PlacesHandler) Search(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Searcher == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal, "Server error", errors.New("search handler not configured"), "")
		return
	}

	query := r.URL.Query()
	if query.Get("radius") == "" && h.DefaultRadius > 0 {
		query.Set("radius", strconv.FormatFloat(h.DefaultRadius, 'f', -1, 64))
	}

	params, err := places.ParseSearchParams(query, h.View.Center)
	if err != nil {
		problem.InvalidParams(w, r, err, h.Env)
		return
	}

	zoom, err := parseZoom(query.Get("zoom"), h.View.Zoom)
	if err != nil {
		problem.InvalidParams(w, r, err, h.Env)
		return
	}

	ctx := r.Context()
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	m := mapview.NewMemory(mapview.View{Center: params.Center(), Zoom: zoom})
	ctrl := session.New(session.Deps{
		Map:      m,
		Searcher: h.Searcher,
		Locator:  geolocation.FromRequest(r),
		Controls: session.StaticControls{
			CategoryValue: string(params.Category),
			RadiusValue:   strconv.FormatFloat(params.RadiusMeters, 'f', -1, 64),
		},
		Logger: *middleware.LoggerFromContext(ctx),
	})

	var outcome session.Outcome
	if query.Has("user_lat") || query.Has("user_lon") || query.Has("geo_error") {
		outcome = ctrl.Start(ctx)
	} else {
		outcome = ctrl.Search(ctx)
	}

	switch middleware.NegotiatedContentType(r) {
	case middleware.ContentHTML:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := feed.WriteHTML(w, outcome.State); err != nil {
			middleware.LoggerFromContext(ctx).Error().Err(err).Msg("render results html")
		}
		return
	case middleware.ContentText:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := feed.RenderText(w, outcome.State); err != nil {
			middleware.LoggerFromContext(ctx).Error().Err(err).Msg("render results text")
		}
		return
	}

	html, err := feed.RenderHTML(outcome.State)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal, "Render failed", err, h.Env)
		return
	}

	response := searchResponse{
		State:       outcome.State,
		HTML:        html,
		Markers:     m.Markers(),
		View:        m.View(),
		Attribution: OSMAttribution,
	}
	if pos, ok := ctrl.LastPosition(); ok {
		response.User = &pos
	}
	writeJSON(w, http.StatusOK, response)
}

func parseZoom(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	zoom, err := strconv.Atoi(raw)
	if err != nil || zoom < 0 || zoom > mapview.MaxZoom {
		return 0, places.FilterError{Field: "zoom", Message: "must be an integer between 0 and " + strconv.Itoa(mapview.MaxZoom)}
	}
	return zoom, nil
}

type categoryItem struct {
	Value  string `json:"value"`
	Label  string `json:"label"`
	Filter string `json:"filter"`
}

// Categories handles GET /api/v1/categories.
func (h *PlacesHandler) Categories(w http.ResponseWriter, r *http.Request) {
	items := make([]categoryItem, 0, len(places.Categories()))
	for _, c := range places.Categories() {
		filter, _ := c.Filter()
		items = append(items, categoryItem{Value: string(c), Label: c.Label(), Filter: filter})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":          items,
		"default_radius": h.DefaultRadius,
		"max_radius":     places.MaxRadiusMeters,
	})
}
