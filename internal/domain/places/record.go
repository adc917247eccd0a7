package places

import (
	"strings"

	"github.com/PetMap-Recife/server/internal/mapview"
)

const (
	// UnnamedLabel replaces a missing name tag.
	UnnamedLabel = "Local sem nome"
	// NoAddressLabel replaces a missing street tag.
	NoAddressLabel = "Endereço não disponível"
)

// Envelope is the top-level provider response.
type Envelope struct {
	Version   float64  `json:"version,omitempty"`
	Generator string   `json:"generator,omitempty"`
	Elements  []Record `json:"elements"`
}

// Len returns the number of records; nil envelopes have none.
func (e *Envelope) Len() int {
	if e == nil {
		return 0
	}
	return len(e.Elements)
}

// Record is one node, way, or relation returned by the provider.
// Ways and relations carry Center instead of Lat/Lon when queried with "out center".
type Record struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat,omitempty"`
	Lon    *float64          `json:"lon,omitempty"`
	Center *mapview.Point    `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

// Coordinates resolves the record position: direct lat/lon first, then center.
func (r Record) Coordinates() (mapview.Point, bool) {
	if r.Lat != nil && r.Lon != nil {
		return mapview.Point{Lat: *r.Lat, Lon: *r.Lon}, true
	}
	if r.Center != nil {
		return *r.Center, true
	}
	return mapview.Point{}, false
}

func (r Record) tag(key string) string {
	if r.Tags == nil {
		return ""
	}
	return strings.TrimSpace(r.Tags[key])
}

// Name returns the name tag or UnnamedLabel.
func (r Record) Name() string {
	if name := r.tag("name"); name != "" {
		return name
	}
	return UnnamedLabel
}

// Address returns the street (with house number when tagged) or NoAddressLabel.
func (r Record) Address() string {
	street := r.tag("addr:street")
	if street == "" {
		return NoAddressLabel
	}
	if number := r.tag("addr:housenumber"); number != "" {
		return street + ", " + number
	}
	return street
}

// Kind returns the category label derived from the tags.
func (r Record) Kind() string {
	return KindLabel(r.Tags)
}
