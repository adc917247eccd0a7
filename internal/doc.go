// Package internal documents the PetMap server internals.
//
// The internal tree is organized by responsibility:
//   - domain/places: categories, search parameters and place records
//   - geocoding/overpass: query builder and Overpass API client
//   - mapview, markers, feed, geolocation: the map widget's collaborators
//   - session: the search cycle that ties them together
//   - api: HTTP handlers, middleware, problem responses and routing
//   - config, metrics, telemetry, sanitize: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
