package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/PetMap-Recife/server/internal/config"
	"github.com/PetMap-Recife/server/internal/domain/places"
	"github.com/PetMap-Recife/server/internal/feed"
	"github.com/PetMap-Recife/server/internal/geolocation"
	"github.com/PetMap-Recife/server/internal/mapview"
	"github.com/PetMap-Recife/server/internal/session"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	searchCategory string
	searchRadius   float64
	searchLat      float64
	searchLon      float64
	searchUserLat  float64
	searchUserLon  float64
	searchOutput   string
	searchViewOn   int
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search for pet-friendly places from the command line",
	Long: `Run one search session against the Overpass API and print the results.

Without --user-lat/--user-lon the search runs around --lat/--lon (default: the
configured map center). With them, the session starts the way the page does:
the map centers on the user and the search runs there.

Examples:
  # Veterinarians within 2 km of the default center
  petmap search --category veterinary --radius 2000

  # Dog parks around a given position, as JSON
  petmap search --category dog_park --user-lat -8.05 --user-lon -34.9 --output json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		logger := config.NewLogger(cfg.Logging)
		opts := searchOptions{
			Category:  searchCategory,
			Radius:    searchRadius,
			Center:    cfg.Map.Center(),
			Zoom:      cfg.Map.DefaultZoom,
			Output:    searchOutput,
			ViewOn:    searchViewOn,
			UseCenter: cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon"),
			UseUser:   cmd.Flags().Changed("user-lat") || cmd.Flags().Changed("user-lon"),
		}
		if opts.Radius <= 0 {
			opts.Radius = cfg.Map.DefaultRadius
		}
		if opts.UseCenter {
			opts.Center = mapview.Point{Lat: searchLat, Lon: searchLon}
		}
		if opts.UseUser {
			opts.User = mapview.Point{Lat: searchUserLat, Lon: searchUserLon}
		}
		return runSearch(cmd.Context(), cmd.OutOrStdout(), newOverpassClient(cfg.Overpass), opts, logger)
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchCategory, "category", string(places.CategoryPetShop), "place category (pet, veterinary, dog_park)")
	searchCmd.Flags().Float64Var(&searchRadius, "radius", 0, "search radius in meters (default: configured radius)")
	searchCmd.Flags().Float64Var(&searchLat, "lat", 0, "search center latitude")
	searchCmd.Flags().Float64Var(&searchLon, "lon", 0, "search center longitude")
	searchCmd.Flags().Float64Var(&searchUserLat, "user-lat", 0, "user latitude; starts the session at the user's position")
	searchCmd.Flags().Float64Var(&searchUserLon, "user-lon", 0, "user longitude")
	searchCmd.Flags().StringVarP(&searchOutput, "output", "o", "text", "output format (text, json, html)")
	searchCmd.Flags().IntVar(&searchViewOn, "view", 0, "after the search, center the map on result N (1-based)")
}

type searchOptions struct {
	Category  string
	Radius    float64
	Center    mapview.Point
	Zoom      int
	User      mapview.Point
	UseCenter bool
	UseUser   bool
	Output    string
	ViewOn    int
}

type searchResult struct {
	State   feed.State       `json:"state"`
	Markers []mapview.Marker `json:"markers"`
	View    mapview.View     `json:"view"`
}

func runSearch(ctx context.Context, out io.Writer, searcher session.Searcher, opts searchOptions, logger zerolog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	switch opts.Output {
	case "text", "json", "html":
	default:
		return fmt.Errorf("unknown output format %q (want text, json or html)", opts.Output)
	}

	m := mapview.NewMemory(mapview.View{Center: opts.Center, Zoom: opts.Zoom})
	deps := session.Deps{
		Map:      m,
		Searcher: searcher,
		Controls: session.StaticControls{
			CategoryValue: opts.Category,
			RadiusValue:   strconv.FormatFloat(opts.Radius, 'f', -1, 64),
		},
		Logger: logger,
	}
	if opts.UseUser {
		deps.Locator = geolocation.Fixed(opts.User)
	}
	ctrl := session.New(deps)

	var outcome session.Outcome
	if opts.UseUser {
		outcome = ctrl.Start(ctx)
	} else {
		outcome = ctrl.Search(ctx)
	}
	if outcome.Err != nil && outcome.State.Kind == "" {
		return outcome.Err
	}

	if opts.ViewOn > 0 {
		if err := ctrl.ViewOnMap(opts.ViewOn - 1); err != nil {
			return fmt.Errorf("view on map: %w", err)
		}
	}

	if err := writeSearchResult(out, opts, outcome.State, m); err != nil {
		return err
	}

	// Bad input is a usage error; provider failures are only rendered.
	var filterErr places.FilterError
	if errors.As(outcome.Err, &filterErr) {
		return outcome.Err
	}
	return nil
}

func writeSearchResult(out io.Writer, opts searchOptions, state feed.State, m *mapview.Memory) error {
	switch opts.Output {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(searchResult{State: state, Markers: m.Markers(), View: m.View()})
	case "html":
		return feed.WriteHTML(out, state)
	}

	if err := feed.RenderText(out, state); err != nil {
		return err
	}
	if opts.ViewOn > 0 {
		view := m.View()
		_, err := fmt.Fprintf(out, "\nMapa: %s (zoom %d)\n", view.Center, view.Zoom)
		return err
	}
	return nil
}
