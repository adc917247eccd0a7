package places

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/PetMap-Recife/server/internal/mapview"
	"github.com/go-playground/validator/v10"
)

const (
	// DefaultRadiusMeters matches the default of the radius input.
	DefaultRadiusMeters = 1000
	// MaxRadiusMeters keeps queries inside what the public endpoint answers in time.
	MaxRadiusMeters = 50000
)

// SearchParams is built fresh for every search.
type SearchParams struct {
	Category     Category `query:"category" validate:"required,category"`
	RadiusMeters float64  `query:"radius" validate:"gt=0,lte=50000"`
	Lat          float64  `query:"lat" validate:"gte=-90,lte=90"`
	Lon          float64  `query:"lon" validate:"gte=-180,lte=180"`
}

// Center returns the search center.
func (p SearchParams) Center() mapview.Point {
	return mapview.Point{Lat: p.Lat, Lon: p.Lon}
}

// FilterError reports a search parameter that cannot be used. Field names
// the query parameter, or "lat,lon" when the pair is incomplete.
type FilterError struct {
	Field   string
	Message string
}

func (e FilterError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if name := field.Tag.Get("query"); name != "" {
			return name
		}
		return field.Name
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).Valid()
	})
	return v
}

// Validate checks the params against the closed category set and coordinate bounds.
// Unknown categories are reported as ErrUnknownCategory wrapped in a FilterError.
func (p SearchParams) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required", "category":
		return fmt.Errorf("%w: %w", FilterError{Field: fe.Field(), Message: "must be one of " + categoryList()}, ErrUnknownCategory)
	case "gt":
		return FilterError{Field: fe.Field(), Message: "must be greater than " + fe.Param()}
	case "gte", "lte":
		return FilterError{Field: fe.Field(), Message: rangeMessage(fe.Field())}
	default:
		return FilterError{Field: fe.Field(), Message: "is invalid"}
	}
}

func rangeMessage(field string) string {
	switch field {
	case "lat":
		return "must be between -90 and 90"
	case "lon":
		return "must be between -180 and 180"
	case "radius":
		return fmt.Sprintf("must be %dm or less", MaxRadiusMeters)
	}
	return "is out of range"
}

func categoryList() string {
	names := make([]string, 0, len(categories))
	for _, c := range Categories() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

// ParseSearchParams reads category, radius, lat and lon from a query string.
// Center falls back to fallback when lat/lon are both absent.
func ParseSearchParams(values url.Values, fallback mapview.Point) (SearchParams, error) {
	params := SearchParams{
		Category:     Category(strings.TrimSpace(values.Get("category"))),
		RadiusMeters: DefaultRadiusMeters,
		Lat:          fallback.Lat,
		Lon:          fallback.Lon,
	}

	radius, err := ParseRadius(values.Get("radius"))
	if err != nil {
		return params, err
	}
	params.RadiusMeters = radius

	rawLat := strings.TrimSpace(values.Get("lat"))
	rawLon := strings.TrimSpace(values.Get("lon"))
	if (rawLat == "") != (rawLon == "") {
		return params, FilterError{Field: "lat,lon", Message: "both lat and lon must be provided"}
	}
	if rawLat != "" {
		lat, err := strconv.ParseFloat(rawLat, 64)
		if err != nil {
			return params, FilterError{Field: "lat", Message: "must be a valid number"}
		}
		lon, err := strconv.ParseFloat(rawLon, 64)
		if err != nil {
			return params, FilterError{Field: "lon", Message: "must be a valid number"}
		}
		params.Lat, params.Lon = lat, lon
	}

	if err := params.Validate(); err != nil {
		return params, err
	}
	return params, nil
}

// ParseRadius parses the radius input; empty means DefaultRadiusMeters.
// Bounds are left to Validate.
func ParseRadius(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultRadiusMeters, nil
	}
	radius, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, FilterError{Field: "radius", Message: "must be a valid number"}
	}
	return radius, nil
}
