// Package feed turns search outcomes into the result list shown next to the map.
//
// Rendering is declarative: a State fully describes what the results region
// shows, including the "view on map" action of every card, so nothing has to
// be re-attached after a render.
package feed

import (
	"errors"
	"fmt"

	"github.com/PetMap-Recife/server/internal/domain/places"
	"github.com/PetMap-Recife/server/internal/mapview"
	"github.com/PetMap-Recife/server/internal/sanitize"
)

// Kind is the render state of the results region.
type Kind string

const (
	KindLoading   Kind = "loading"
	KindEmpty     Kind = "empty"
	KindPopulated Kind = "populated"
	KindError     Kind = "error"
)

const (
	LoadingMessage = "Buscando locais..."
	EmptyMessage   = "Nenhum local encontrado. Tente ampliar o raio de busca."
	errorPrefix    = "Erro ao buscar locais: "
)

// ErrNoAction is returned when a card cannot recenter the map.
var ErrNoAction = errors.New("card has no map position")

// ViewAction recenters the map on a result.
type ViewAction struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Zoom int     `json:"zoom"`
}

// Card is one rendered result.
type Card struct {
	ID      int64       `json:"id"`
	Name    string      `json:"name"`
	Address string      `json:"address"`
	Kind    string      `json:"kind"`
	Action  *ViewAction `json:"action,omitempty"`
}

// Apply runs the card's view action against m.
func (c Card) Apply(m mapview.Map) error {
	if c.Action == nil {
		return ErrNoAction
	}
	m.SetView(mapview.View{
		Center: mapview.Point{Lat: c.Action.Lat, Lon: c.Action.Lon},
		Zoom:   c.Action.Zoom,
	})
	return nil
}

// State is what the results region displays.
type State struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message,omitempty"`
	Cards   []Card `json:"cards,omitempty"`
}

// Loading is shown while a search is in flight.
func Loading() State {
	return State{Kind: KindLoading, Message: LoadingMessage}
}

// FromEnvelope renders a successful response: Empty when it holds no
// records, otherwise one card per record.
func FromEnvelope(env *places.Envelope) State {
	if env.Len() == 0 {
		return State{Kind: KindEmpty, Message: EmptyMessage}
	}

	cards := make([]Card, 0, len(env.Elements))
	for _, record := range env.Elements {
		cards = append(cards, NewCard(record))
	}
	return State{Kind: KindPopulated, Cards: cards}
}

// FromError renders a failed search.
func FromError(err error) State {
	msg := "erro desconhecido"
	if err != nil {
		msg = err.Error()
	}
	return State{Kind: KindError, Message: errorPrefix + msg}
}

// NewCard builds the card for a record. Provider text is stripped of markup;
// a value that is empty afterwards falls back to the standard label.
func NewCard(record places.Record) Card {
	card := Card{
		ID:      record.ID,
		Name:    sanitize.Label(record.Name(), places.UnnamedLabel),
		Address: sanitize.Label(record.Address(), places.NoAddressLabel),
		Kind:    record.Kind(),
	}
	if pos, ok := record.Coordinates(); ok {
		card.Action = &ViewAction{Lat: pos.Lat, Lon: pos.Lon, Zoom: mapview.PlaceZoom}
	}
	return card
}

// ViewOnMap applies the action of the card at index.
func (s State) ViewOnMap(index int, m mapview.Map) error {
	if s.Kind != KindPopulated || index < 0 || index >= len(s.Cards) {
		return fmt.Errorf("no card at index %d", index)
	}
	return s.Cards[index].Apply(m)
}
