// Package session drives one map session: locate the user, search around the
// map center, render the results, and place the markers.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/PetMap-Recife/server/internal/domain/places"
	"github.com/PetMap-Recife/server/internal/feed"
	"github.com/PetMap-Recife/server/internal/geolocation"
	"github.com/PetMap-Recife/server/internal/mapview"
	"github.com/PetMap-Recife/server/internal/markers"
	"github.com/PetMap-Recife/server/internal/metrics"
	"github.com/rs/zerolog"
)

// UserMarkerLabel is the popup of the marker placed at the user's position.
const UserMarkerLabel = "Sua localização"

// ErrSuperseded is returned by a search whose result was discarded because a
// newer search started before it completed.
var ErrSuperseded = errors.New("search superseded by a newer search")

// State is the controller's position in the search cycle.
type State int

const (
	StateIdle State = iota
	StateSearching
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSearching:
		return "searching"
	default:
		return "unknown"
	}
}

// Searcher runs a geodata query. *overpass.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, params places.SearchParams) (*places.Envelope, error)
}

// ResultsView receives every state the results region should display.
// Show is called with the controller's lock held and must not call back into it.
type ResultsView interface {
	Show(feed.State)
}

// Controls exposes the current values of the search form.
type Controls interface {
	Category() string
	Radius() string
}

// Deps are the collaborators of a Controller. Map and Searcher are required.
type Deps struct {
	Map      mapview.Map
	Searcher Searcher
	Locator  geolocation.Locator
	Results  ResultsView
	Controls Controls
	Logger   zerolog.Logger
}

// Outcome reports how a search cycle ended.
type Outcome struct {
	Generation uint64
	Params     places.SearchParams
	State      feed.State
	Markers    int
	Err        error
}

// Controller owns the session state: map view, marker set, last known position.
// Searches may be triggered concurrently; each new search cancels the one it
// supersedes and only the latest one writes to the map and results region.
type Controller struct {
	m        mapview.Map
	markers  *markers.Manager
	searcher Searcher
	locator  geolocation.Locator
	results  ResultsView
	controls Controls
	logger   zerolog.Logger

	mu           sync.Mutex
	state        State
	generation   uint64
	cancel       context.CancelFunc
	current      feed.State
	lastPosition *mapview.Point
	userMarker   mapview.MarkerID
}

// New creates a Controller. The map keeps whatever view it already has.
func New(deps Deps) *Controller {
	locator := deps.Locator
	if locator == nil {
		locator = geolocation.Unavailable()
	}
	controls := deps.Controls
	if controls == nil {
		controls = StaticControls{}
	}
	return &Controller{
		m:        deps.Map,
		markers:  markers.NewManager(deps.Map),
		searcher: deps.Searcher,
		locator:  locator,
		results:  deps.Results,
		controls: controls,
		logger:   deps.Logger.With().Str("component", "session").Logger(),
		state:    StateIdle,
	}
}

// Start attempts geolocation and then runs the first search. A failed
// geolocation only costs a warning: the search runs around the current view.
func (c *Controller) Start(ctx context.Context) Outcome {
	pos, err := c.locator.Locate(ctx)
	if err != nil {
		metrics.GeolocationTotal.WithLabelValues("failure").Inc()
		c.logger.Warn().Err(err).Msg("geolocation failed, searching around current view")
		return c.Search(ctx)
	}

	metrics.GeolocationTotal.WithLabelValues("success").Inc()
	c.mu.Lock()
	c.lastPosition = &pos
	if c.userMarker != 0 {
		c.m.RemoveMarker(c.userMarker)
	}
	c.m.SetView(mapview.View{Center: pos, Zoom: mapview.UserZoom})
	c.userMarker = c.m.AddMarker(pos, UserMarkerLabel)
	c.mu.Unlock()

	c.logger.Debug().Str("position", pos.String()).Msg("user located")
	return c.Search(ctx)
}

// Search runs one search cycle around the current map center.
func (c *Controller) Search(ctx context.Context) Outcome {
	gen, ctx, done := c.begin(ctx)
	defer done()

	params, err := c.readParams()
	if err != nil {
		return c.finish(gen, params, nil, err)
	}

	start := time.Now()
	envelope, err := c.searcher.Search(ctx, params)
	c.logger.Debug().
		Uint64("generation", gen).
		Str("category", string(params.Category)).
		Dur("latency", time.Since(start)).
		Msg("search returned")

	return c.finish(gen, params, envelope, err)
}

// begin moves to Searching under a new generation, cancels the search it
// supersedes, clears the markers, and shows the loading placeholder.
func (c *Controller) begin(parent context.Context) (uint64, context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	gen := c.generation
	c.cancel = cancel
	c.state = StateSearching
	c.markers.Clear()
	c.show(feed.Loading())
	c.mu.Unlock()

	done := func() {
		c.mu.Lock()
		if c.generation == gen {
			c.state = StateIdle
			c.cancel = nil
		}
		c.mu.Unlock()
		cancel()
	}
	return gen, ctx, done
}

func (c *Controller) finish(gen uint64, params places.SearchParams, envelope *places.Envelope, err error) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		metrics.SearchesTotal.WithLabelValues(string(params.Category), "superseded").Inc()
		c.logger.Debug().Uint64("generation", gen).Msg("discarding superseded search")
		return Outcome{Generation: gen, Params: params, Err: ErrSuperseded}
	}

	if err != nil {
		state := feed.FromError(err)
		c.show(state)
		metrics.SearchesTotal.WithLabelValues(string(params.Category), string(state.Kind)).Inc()
		c.logger.Error().Err(err).Uint64("generation", gen).Str("category", string(params.Category)).Msg("search failed")
		return Outcome{Generation: gen, Params: params, State: state, Err: err}
	}

	state := feed.FromEnvelope(envelope)
	c.show(state)
	added := 0
	if envelope != nil {
		added = c.markers.AddAll(envelope.Elements)
	}
	metrics.SearchesTotal.WithLabelValues(string(params.Category), string(state.Kind)).Inc()
	c.logger.Info().
		Uint64("generation", gen).
		Str("category", string(params.Category)).
		Float64("radius", params.RadiusMeters).
		Int("records", envelope.Len()).
		Int("markers", added).
		Msg("search completed")

	return Outcome{Generation: gen, Params: params, State: state, Markers: added}
}

func (c *Controller) readParams() (places.SearchParams, error) {
	center := c.m.View().Center
	params := places.SearchParams{
		Category: places.Category(strings.TrimSpace(c.controls.Category())),
		Lat:      center.Lat,
		Lon:      center.Lon,
	}

	radius, err := places.ParseRadius(c.controls.Radius())
	if err != nil {
		return params, err
	}
	params.RadiusMeters = radius

	if err := params.Validate(); err != nil {
		return params, err
	}
	return params, nil
}

// show must be called with c.mu held.
func (c *Controller) show(state feed.State) {
	c.current = state
	if c.results != nil {
		c.results.Show(state)
	}
}

// ViewOnMap runs the "view on map" action of the card at index in the
// currently displayed results.
func (c *Controller) ViewOnMap(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.ViewOnMap(index, c.m)
}

// State returns the current position in the search cycle.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Current returns the state last shown in the results region.
func (c *Controller) Current() feed.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// LastPosition returns the last known user position.
func (c *Controller) LastPosition() (mapview.Point, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastPosition == nil {
		return mapview.Point{}, false
	}
	return *c.lastPosition, true
}

// MarkerCount returns the number of result markers on the map.
func (c *Controller) MarkerCount() int {
	return c.markers.Len()
}

// Map returns the map the session draws on.
func (c *Controller) Map() mapview.Map {
	return c.m
}
