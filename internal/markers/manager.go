// Package markers tracks the result markers placed on the map by a search.
package markers

import (
	"html"
	"sync"

	"github.com/PetMap-Recife/server/internal/domain/places"
	"github.com/PetMap-Recife/server/internal/mapview"
	"github.com/PetMap-Recife/server/internal/sanitize"
)

// Manager owns the markers of the most recent search. Markers added to the
// map by anyone else (such as the user's own position) are left alone.
type Manager struct {
	mu      sync.Mutex
	m       mapview.Map
	tracked []mapview.MarkerID
}

// NewManager creates a manager drawing on m.
func NewManager(m mapview.Map) *Manager {
	return &Manager{m: m}
}

// Clear removes every tracked marker from the map. Clearing an empty set is a no-op.
func (mgr *Manager) Clear() {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	for _, id := range mgr.tracked {
		mgr.m.RemoveMarker(id)
	}
	mgr.tracked = nil
}

// AddAll places one marker per record with resolvable coordinates and returns
// how many were added. Records without coordinates are skipped.
func (mgr *Manager) AddAll(records []places.Record) int {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	added := 0
	for _, record := range records {
		pos, ok := record.Coordinates()
		if !ok {
			continue
		}
		id := mgr.m.AddMarker(pos, Popup(record))
		mgr.tracked = append(mgr.tracked, id)
		added++
	}
	return added
}

// Len returns the number of tracked markers.
func (mgr *Manager) Len() int {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	return len(mgr.tracked)
}

// IDs returns a copy of the tracked marker ids.
func (mgr *Manager) IDs() []mapview.MarkerID {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	out := make([]mapview.MarkerID, len(mgr.tracked))
	copy(out, mgr.tracked)
	return out
}

// Popup is the marker label for a record: the name in bold, then its kind.
// The name is cleaned the same way as on the result card.
func Popup(record places.Record) string {
	name := sanitize.Label(record.Name(), places.UnnamedLabel)
	return "<b>" + html.EscapeString(name) + "</b><br>" + html.EscapeString(record.Kind())
}
