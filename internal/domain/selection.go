package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Mode is how the user picks locations.
type Mode string

const (
	ModeIdentifier Mode = "identifier"
	ModeMap        Mode = "map"
	// ModeRandom asks the backend to synthesize stops; committed stops are
	// kept but not sent to optimize.
	ModeRandom Mode = "random"
)

// ParseMode accepts the canonical names plus the aliases the web client used.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "identifier", "nodeid", "id":
		return ModeIdentifier, nil
	case "map", "map-click":
		return ModeMap, nil
	case "random":
		return ModeRandom, nil
	default:
		return "", fmt.Errorf("unknown selection mode %q", s)
	}
}

// Selection is the user's current depot and ordered stop choices.
//
// Stops never contains duplicates. The depot may also appear as a stop.
// Ids are stored as given; validation happens at the backend.
type Selection struct {
	Depot string
	Stops []string
	Mode  Mode
}

// NewSelection returns an empty selection in map-click mode, which is the
// mode the selector opens in.
func NewSelection() Selection {
	return Selection{Stops: []string{}, Mode: ModeMap}
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s Selection) Clone() Selection {
	c := s
	c.Stops = slices.Clone(s.Stops)
	if c.Stops == nil {
		c.Stops = []string{}
	}
	return c
}

// SetDepot reports whether the depot changed.
func (s *Selection) SetDepot(id string) bool {
	if s.Depot == id {
		return false
	}
	s.Depot = id
	return true
}

// ClearDepot reports whether a depot was set.
func (s *Selection) ClearDepot() bool {
	return s.SetDepot("")
}

// AddStop appends id unless it is already present.
func (s *Selection) AddStop(id string) bool {
	if slices.Contains(s.Stops, id) {
		return false
	}
	s.Stops = append(s.Stops, id)
	return true
}

// RemoveStop removes the stop at index. Out-of-range indexes are a no-op.
func (s *Selection) RemoveStop(index int) bool {
	if index < 0 || index >= len(s.Stops) {
		return false
	}
	s.Stops = slices.Delete(s.Stops, index, index+1)
	return true
}

func (s *Selection) SetMode(m Mode) bool {
	if s.Mode == m {
		return false
	}
	s.Mode = m
	return true
}

// OptimizeStops returns the stop ids to send to optimize: none in random
// mode, otherwise the committed stops with blank entries dropped.
func (s Selection) OptimizeStops() []string {
	out := []string{}
	if s.Mode == ModeRandom {
		return out
	}
	for _, id := range s.Stops {
		if strings.TrimSpace(id) != "" {
			out = append(out, id)
		}
	}
	return out
}
