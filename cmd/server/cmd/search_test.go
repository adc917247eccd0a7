package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/PetMap-Recife/server/internal/domain/places"
	"github.com/PetMap-Recife/server/internal/mapview"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searcherFunc func(ctx context.Context, params places.SearchParams) (*places.Envelope, error)

func (f searcherFunc) Search(ctx context.Context, params places.SearchParams) (*places.Envelope, error) {
	return f(ctx, params)
}

func vetEnvelope() *places.Envelope {
	lat, lon := -8.05, -34.88
	return &places.Envelope{Elements: []places.Record{
		{Type: "node", ID: 42, Lat: &lat, Lon: &lon, Tags: map[string]string{"name": "Clínica X", "amenity": "veterinary"}},
	}}
}

func baseOptions() searchOptions {
	return searchOptions{
		Category: "veterinary",
		Radius:   1000,
		Center:   mapview.Point{Lat: -8.0476, Lon: -34.877},
		Zoom:     mapview.DefaultZoom,
		Output:   "text",
	}
}

func TestRunSearch_Text(t *testing.T) {
	var got places.SearchParams
	searcher := searcherFunc(func(_ context.Context, params places.SearchParams) (*places.Envelope, error) {
		got = params
		return vetEnvelope(), nil
	})

	var out bytes.Buffer
	require.NoError(t, runSearch(context.Background(), &out, searcher, baseOptions(), zerolog.Nop()))

	assert.Equal(t, places.CategoryVeterinary, got.Category)
	assert.Equal(t, 1000.0, got.RadiusMeters)
	assert.Equal(t, -8.0476, got.Lat)
	assert.Contains(t, out.String(), "1. Clínica X [Veterinário]")
	assert.Contains(t, out.String(), "Endereço não disponível")
}

func TestRunSearch_JSONWithUser(t *testing.T) {
	searcher := searcherFunc(func(_ context.Context, params places.SearchParams) (*places.Envelope, error) {
		assert.Equal(t, -8.1, params.Lat)
		assert.Equal(t, -34.9, params.Lon)
		return vetEnvelope(), nil
	})

	opts := baseOptions()
	opts.Output = "json"
	opts.UseUser = true
	opts.User = mapview.Point{Lat: -8.1, Lon: -34.9}

	var out bytes.Buffer
	require.NoError(t, runSearch(context.Background(), &out, searcher, opts, zerolog.Nop()))

	var result searchResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, "populated", string(result.State.Kind))
	assert.Equal(t, mapview.UserZoom, result.View.Zoom)
	// user marker plus one result
	assert.Len(t, result.Markers, 2)
}

func TestRunSearch_ProviderErrorIsRendered(t *testing.T) {
	searcher := searcherFunc(func(context.Context, places.SearchParams) (*places.Envelope, error) {
		return nil, errors.New("Erro HTTP: 500")
	})

	var out bytes.Buffer
	require.NoError(t, runSearch(context.Background(), &out, searcher, baseOptions(), zerolog.Nop()))

	assert.Equal(t, "Erro ao buscar locais: Erro HTTP: 500\n", out.String())
}

func TestRunSearch_UnknownCategoryFails(t *testing.T) {
	called := false
	searcher := searcherFunc(func(context.Context, places.SearchParams) (*places.Envelope, error) {
		called = true
		return vetEnvelope(), nil
	})

	opts := baseOptions()
	opts.Category = "zoo"

	var out bytes.Buffer
	err := runSearch(context.Background(), &out, searcher, opts, zerolog.Nop())

	require.Error(t, err)
	assert.True(t, errors.Is(err, places.ErrUnknownCategory))
	assert.False(t, called)
}

func TestRunSearch_ViewOnMap(t *testing.T) {
	searcher := searcherFunc(func(context.Context, places.SearchParams) (*places.Envelope, error) {
		return vetEnvelope(), nil
	})

	opts := baseOptions()
	opts.ViewOn = 1

	var out bytes.Buffer
	require.NoError(t, runSearch(context.Background(), &out, searcher, opts, zerolog.Nop()))

	assert.Contains(t, out.String(), "Mapa: -8.05,-34.88 (zoom 17)")
}

func TestRunSearch_ViewOnMissingCard(t *testing.T) {
	searcher := searcherFunc(func(context.Context, places.SearchParams) (*places.Envelope, error) {
		return &places.Envelope{}, nil
	})

	opts := baseOptions()
	opts.ViewOn = 3

	err := runSearch(context.Background(), &bytes.Buffer{}, searcher, opts, zerolog.Nop())
	assert.Error(t, err)
}

func TestRunSearch_UnknownOutput(t *testing.T) {
	opts := baseOptions()
	opts.Output = "xml"

	err := runSearch(context.Background(), &bytes.Buffer{}, searcherFunc(nil), opts, zerolog.Nop())
	assert.ErrorContains(t, err, "unknown output format")
}

func TestSearchCommandFlags(t *testing.T) {
	for _, flag := range []string{"category", "radius", "lat", "lon", "user-lat", "user-lon", "output", "view"} {
		assert.NotNil(t, searchCmd.Flags().Lookup(flag), "expected flag %q", flag)
	}
}

func TestSearchCommandDefaultCategory(t *testing.T) {
	flag := searchCmd.Flags().Lookup("category")
	require.NotNil(t, flag)
	assert.Equal(t, string(places.CategoryPetShop), flag.DefValue)
	assert.True(t, places.Category(flag.DefValue).Valid())
}
