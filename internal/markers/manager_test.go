package markers

import (
	"testing"

	"github.com/PetMap-Recife/server/internal/domain/places"
	"github.com/PetMap-Recife/server/internal/feed"
	"github.com/PetMap-Recife/server/internal/mapview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func direct(lat, lon float64, tags map[string]string) places.Record {
	return places.Record{Type: "node", Lat: ptr(lat), Lon: ptr(lon), Tags: tags}
}

func centered(lat, lon float64) places.Record {
	return places.Record{Type: "way", Center: &mapview.Point{Lat: lat, Lon: lon}}
}

func unplaced() places.Record {
	return places.Record{Type: "relation", Tags: map[string]string{"name": "Sem coordenadas"}}
}

func TestManager_AddAllSkipsUnresolvable(t *testing.T) {
	tests := []struct {
		name    string
		records []places.Record
		want    int
	}{
		{"empty", nil, 0},
		{"direct only", []places.Record{direct(1, 2, nil), direct(3, 4, nil)}, 2},
		{"center only", []places.Record{centered(1, 2)}, 1},
		{"mixed", []places.Record{direct(1, 2, nil), unplaced(), centered(5, 6), unplaced()}, 2},
		{"nothing resolvable", []places.Record{unplaced(), unplaced()}, 0},
		{"lat without lon", []places.Record{{Lat: ptr(1)}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mapview.NewMemory(mapview.DefaultView())
			mgr := NewManager(m)

			added := mgr.AddAll(tt.records)

			assert.Equal(t, tt.want, added)
			assert.Equal(t, tt.want, mgr.Len())
			assert.Len(t, m.Markers(), tt.want)

			mgr.Clear()
			assert.Equal(t, 0, mgr.Len())
			assert.Empty(t, m.Markers())
		})
	}
}

func TestManager_ClearIsIdempotent(t *testing.T) {
	m := mapview.NewMemory(mapview.DefaultView())
	mgr := NewManager(m)

	mgr.Clear()
	mgr.AddAll([]places.Record{direct(1, 2, nil)})
	mgr.Clear()
	mgr.Clear()

	assert.Equal(t, 0, mgr.Len())
	assert.Empty(t, mgr.IDs())
}

func TestManager_ClearLeavesForeignMarkers(t *testing.T) {
	m := mapview.NewMemory(mapview.DefaultView())
	user := m.AddMarker(mapview.Point{Lat: 9, Lon: 9}, "Sua localização")
	mgr := NewManager(m)

	mgr.AddAll([]places.Record{direct(1, 2, nil), centered(3, 4)})
	require.Len(t, m.Markers(), 3)

	mgr.Clear()

	remaining := m.Markers()
	require.Len(t, remaining, 1)
	assert.Equal(t, user, remaining[0].ID)
}

func TestPopup(t *testing.T) {
	record := direct(1, 2, map[string]string{"name": "Pet & Cia", "shop": "pet"})
	assert.Equal(t, "<b>Pet &amp; Cia</b><br>Pet Shop", Popup(record))

	assert.Equal(t, "<b>Local sem nome</b><br>Local Pet-Friendly", Popup(direct(1, 2, nil)))
}

func TestPopup_MatchesCardName(t *testing.T) {
	tests := []struct {
		name     string
		tag      string
		wantName string
	}{
		{"markup only", "<b></b>", places.UnnamedLabel},
		{"script stripped", "<script>alert(1)</script>", places.UnnamedLabel},
		{"markup around text", "<i>Clínica X</i>", "Clínica X"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := direct(1, 2, map[string]string{"name": tt.tag, "amenity": "veterinary"})

			card := feed.NewCard(record)

			assert.Equal(t, tt.wantName, card.Name)
			assert.Equal(t, "<b>"+tt.wantName+"</b><br>Veterinário", Popup(record))
		})
	}
}

func TestManager_MarkerPositions(t *testing.T) {
	m := mapview.NewMemory(mapview.DefaultView())
	mgr := NewManager(m)

	mgr.AddAll([]places.Record{direct(-8.05, -34.88, nil), centered(-8.06, -34.89)})

	markers := m.Markers()
	require.Len(t, markers, 2)
	assert.Equal(t, mapview.Point{Lat: -8.05, Lon: -34.88}, markers[0].Position)
	assert.Equal(t, mapview.Point{Lat: -8.06, Lon: -34.89}, markers[1].Position)
}
