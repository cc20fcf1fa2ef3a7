// Package simvars holds the live simulator variables and per-instrument
// settings the panel polls every frame, and moves them over gRPC.
package simvars

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrUnknownVar is returned by Lookup for a variable that has no value.
var ErrUnknownVar = errors.New("unknown simulation variable")

// Settings is where an instrument sits on screen and how big it is.
type Settings struct {
	X, Y, Size int
}

// Var is a registered simulation variable. Group is the instrument that
// registered it, Frequency how far simulation mode moves it per tick and
// Index its order within the group.
type Var struct {
	Group     string
	Label     string
	IsBool    bool
	Frequency float64
	Index     int
}

// Store is the shared telemetry state. Writers are the gRPC client, the
// settings watcher and simulation mode; the frame loop only reads.
type Store struct {
	mu       sync.RWMutex
	values   map[string]float64
	settings map[string]Settings
	vars     map[string]Var
	shadows  bool
	updated  time.Time
}

func NewStore() *Store {
	return &Store{
		values:   make(map[string]float64),
		settings: make(map[string]Settings),
		vars:     make(map[string]Var),
	}
}

// Value returns the latest reading for label, or 0 if there is none.
func (s *Store) Value(label string) float64 {
	v, _ := s.Lookup(label)
	return v
}

// Lookup returns the latest reading for label.
func (s *Store) Lookup(label string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[label]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownVar, label)
	}
	return v, nil
}

func (s *Store) Set(label string, v float64) {
	s.mu.Lock()
	s.values[label] = v
	s.updated = time.Now()
	s.mu.Unlock()
}

// SetMany applies a batch of readings at once.
func (s *Store) SetMany(vals map[string]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range vals {
		s.values[k] = v
	}
	s.updated = time.Now()
}

// Snapshot returns a copy of every reading.
func (s *Store) Snapshot() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// LastUpdate is when a reading last changed.
func (s *Store) LastUpdate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updated
}

// ReadSettings returns the stored placement of the named instrument, or
// the given values when it has none.
func (s *Store) ReadSettings(name string, xPos, yPos, size int) (int, int, int) {
	st, ok := s.Settings(name)
	if !ok {
		return xPos, yPos, size
	}
	return st.X, st.Y, st.Size
}

func (s *Store) Settings(name string) (Settings, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.settings[name]
	return st, ok
}

func (s *Store) SetSettings(name string, st Settings) {
	s.mu.Lock()
	s.settings[name] = st
	s.mu.Unlock()
}

// RegisterVar records a variable for simulation mode. Registering the
// same group and label again replaces the earlier entry.
func (s *Store) RegisterVar(group, label string, isBool bool, frequency float64, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars[group+"\x00"+label] = Var{
		Group:     group,
		Label:     label,
		IsBool:    isBool,
		Frequency: frequency,
		Index:     index,
	}
}

// UnregisterVars drops every variable registered under group.
func (s *Store) UnregisterVars(group string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.vars {
		if v.Group == group {
			delete(s.vars, k)
		}
	}
}

// Vars returns the registered variables ordered by group, then index.
func (s *Store) Vars() []Var {
	s.mu.RLock()
	out := make([]Var, 0, len(s.vars))
	for _, v := range s.vars {
		out = append(out, v)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		if out[i].Index != out[j].Index {
			return out[i].Index < out[j].Index
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func (s *Store) Shadows() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shadows
}

func (s *Store) SetShadows(on bool) {
	s.mu.Lock()
	s.shadows = on
	s.mu.Unlock()
}

// ApplyConfig replaces all instrument placements and the shadow flag.
func (s *Store) ApplyConfig(c Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shadows = c.EnableShadows
	s.settings = make(map[string]Settings, len(c.Instruments))
	for name, p := range c.Instruments {
		s.settings[name] = Settings{X: p.X, Y: p.Y, Size: p.Size}
	}
}
