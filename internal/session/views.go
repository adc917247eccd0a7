package session

import (
	"sync"

	"github.com/PetMap-Recife/server/internal/feed"
)

// StaticControls is a fixed set of form values.
type StaticControls struct {
	CategoryValue string
	RadiusValue   string
}

func (s StaticControls) Category() string { return s.CategoryValue }
func (s StaticControls) Radius() string   { return s.RadiusValue }

// ResultsFunc adapts a function to ResultsView.
type ResultsFunc func(feed.State)

func (f ResultsFunc) Show(s feed.State) { f(s) }

// Recorder keeps every state shown, in order.
type Recorder struct {
	mu     sync.Mutex
	states []feed.State
}

func (r *Recorder) Show(s feed.State) {
	r.mu.Lock()
	r.states = append(r.states, s)
	r.mu.Unlock()
}

// States returns a copy of the recorded states.
func (r *Recorder) States() []feed.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]feed.State, len(r.states))
	copy(out, r.states)
	return out
}

// Last returns the most recent state, or a zero State when nothing was shown.
func (r *Recorder) Last() feed.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.states) == 0 {
		return feed.State{}
	}
	return r.states[len(r.states)-1]
}
