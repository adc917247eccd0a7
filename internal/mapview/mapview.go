// Package mapview describes the map the widget draws on.
//
// The browser renders the real map with Leaflet. Server-side code talks to the
// Map interface instead, which is satisfied by the headless Memory map used by
// the search API, the CLI, and tests.
package mapview

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
)

const (
	// DefaultLat and DefaultLon center the map on Recife until geolocation succeeds.
	DefaultLat = -8.0476
	DefaultLon = -34.877

	// DefaultZoom is the zoom level used at startup.
	DefaultZoom = 13
	// UserZoom is used after centering on the user's position.
	UserZoom = 15
	// PlaceZoom is used by the "view on map" action of a result card.
	PlaceZoom = 17
	// MaxZoom is the deepest zoom the tile layer serves.
	MaxZoom = 19
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (p Point) String() string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lon, 'f', -1, 64)
}

// Valid reports whether the point lies inside WGS84 bounds.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// View is the current map viewport.
type View struct {
	Center Point `json:"center"`
	Zoom   int   `json:"zoom"`
}

// DefaultView returns the startup viewport.
func DefaultView() View {
	return View{Center: Point{Lat: DefaultLat, Lon: DefaultLon}, Zoom: DefaultZoom}
}

// MarkerID identifies a marker placed on a Map.
type MarkerID uint64

// Marker is a point indicator bound to a popup label.
type Marker struct {
	ID       MarkerID `json:"id"`
	Position Point    `json:"position"`
	Popup    string   `json:"popup"`
}

// Map is the drawing surface consumed by the marker manager and session controller.
type Map interface {
	View() View
	SetView(View)
	AddMarker(pos Point, popup string) MarkerID
	RemoveMarker(id MarkerID)
	Markers() []Marker
}

// Memory is a headless Map. It is safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	view    View
	nextID  MarkerID
	markers map[MarkerID]Marker
}

// NewMemory creates a Memory map positioned at view.
func NewMemory(view View) *Memory {
	return &Memory{
		view:    view,
		markers: make(map[MarkerID]Marker),
	}
}

func (m *Memory) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view
}

func (m *Memory) SetView(v View) {
	m.mu.Lock()
	m.view = v
	m.mu.Unlock()
}

func (m *Memory) AddMarker(pos Point, popup string) MarkerID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.markers[m.nextID] = Marker{ID: m.nextID, Position: pos, Popup: popup}
	return m.nextID
}

// RemoveMarker is a no-op for unknown ids.
func (m *Memory) RemoveMarker(id MarkerID) {
	m.mu.Lock()
	delete(m.markers, id)
	m.mu.Unlock()
}

// Markers returns the markers on the map in insertion order.
func (m *Memory) Markers() []Marker {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Marker, 0, len(m.markers))
	for _, marker := range m.markers {
		out = append(out, marker)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *Memory) String() string {
	v := m.View()
	return fmt.Sprintf("map(center=%s zoom=%d markers=%d)", v.Center, v.Zoom, len(m.Markers()))
}
