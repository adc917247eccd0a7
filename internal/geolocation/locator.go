// Package geolocation provides the user's position to a session.
//
// In the browser this is navigator.geolocation; the page forwards the result
// to the server as query parameters, which FromRequest turns back into a Locator.
package geolocation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/PetMap-Recife/server/internal/mapview"
)

// ErrUnavailable means no position provider exists.
var ErrUnavailable = errors.New("geolocation unavailable")

// GeolocationError describes a denied or failed position lookup.
type GeolocationError struct {
	Reason string
	Cause  error
}

func (e *GeolocationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("geolocation failed: %s: %v", e.Reason, e.Cause)
	}
	return "geolocation failed: " + e.Reason
}

func (e *GeolocationError) Unwrap() error {
	return e.Cause
}

// Locator yields the user's current position.
type Locator interface {
	Locate(ctx context.Context) (mapview.Point, error)
}

// Func adapts a function to Locator.
type Func func(ctx context.Context) (mapview.Point, error)

func (f Func) Locate(ctx context.Context) (mapview.Point, error) {
	return f(ctx)
}

// Fixed always reports p.
func Fixed(p mapview.Point) Locator {
	return Func(func(ctx context.Context) (mapview.Point, error) {
		if err := ctx.Err(); err != nil {
			return mapview.Point{}, &GeolocationError{Reason: "canceled", Cause: err}
		}
		if !p.Valid() {
			return mapview.Point{}, &GeolocationError{Reason: "position out of range"}
		}
		return p, nil
	})
}

// Unavailable is used when the client has no geolocation capability.
func Unavailable() Locator {
	return Func(func(context.Context) (mapview.Point, error) {
		return mapview.Point{}, &GeolocationError{Reason: "no provider", Cause: ErrUnavailable}
	})
}

// FromRequest reads the browser-reported position from the user_lat and
// user_lon query parameters. A denial reported by the page arrives as
// geo_error and is surfaced as the failure reason.
func FromRequest(r *http.Request) Locator {
	values := r.URL.Query()
	rawLat := strings.TrimSpace(values.Get("user_lat"))
	rawLon := strings.TrimSpace(values.Get("user_lon"))
	reason := strings.TrimSpace(values.Get("geo_error"))

	if rawLat == "" && rawLon == "" {
		if reason != "" {
			return Func(func(context.Context) (mapview.Point, error) {
				return mapview.Point{}, &GeolocationError{Reason: reason}
			})
		}
		return Unavailable()
	}

	lat, errLat := strconv.ParseFloat(rawLat, 64)
	lon, errLon := strconv.ParseFloat(rawLon, 64)
	if errLat != nil || errLon != nil {
		return Func(func(context.Context) (mapview.Point, error) {
			return mapview.Point{}, &GeolocationError{Reason: "malformed position", Cause: errors.Join(errLat, errLon)}
		})
	}
	return Fixed(mapview.Point{Lat: lat, Lon: lon})
}
