// Package scenario loads a YAML description of a model — its name, PRNG
// stream, facilities, and initial events — and applies it to a fresh
// engine.Engine, the way the teacher's sim package loads a PolicyBundle and
// drives simulator construction from it.
package scenario

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/smpl-go/smpl/engine"
)

// FacilitySpec describes one facility to create.
type FacilitySpec struct {
	Name    string `yaml:"name"`
	Servers int    `yaml:"servers"`
}

// EventSpec describes one event to schedule at load time.
type EventSpec struct {
	Code  int     `yaml:"code"`
	Delay float64 `yaml:"delay"`
	Token string  `yaml:"token"`
}

// Scenario is the top-level YAML document shape.
type Scenario struct {
	Model      string         `yaml:"model"`
	Stream     *int           `yaml:"stream"`
	Trace      bool           `yaml:"trace"`
	Facilities []FacilitySpec `yaml:"facilities"`
	Schedule   []EventSpec    `yaml:"schedule"`
}

// Load reads and strictly parses a scenario YAML file, rejecting unknown
// keys, then validates it.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the scenario's structural invariants: a model name is
// present, every facility has at least one server and a unique name, stream
// (if set) is in range, and every scheduled delay is non-negative.
func (s *Scenario) Validate() error {
	if s.Model == "" {
		return fmt.Errorf("scenario: model name must be set")
	}
	if s.Stream != nil && (*s.Stream < 1 || *s.Stream > 15) {
		return fmt.Errorf("scenario: stream %d not in [1,15]", *s.Stream)
	}

	seen := make(map[string]bool, len(s.Facilities))
	for _, f := range s.Facilities {
		if f.Name == "" {
			return fmt.Errorf("scenario: facility name must be set")
		}
		if seen[f.Name] {
			return fmt.Errorf("scenario: duplicate facility name %q", f.Name)
		}
		seen[f.Name] = true
		if f.Servers < 1 {
			return fmt.Errorf("scenario: facility %q must have at least one server, got %d", f.Name, f.Servers)
		}
	}

	for _, ev := range s.Schedule {
		if ev.Delay < 0 {
			return fmt.Errorf("scenario: event %d has negative delay %v", ev.Code, ev.Delay)
		}
	}
	return nil
}

// Apply initializes eng for s: calls Init, pins the PRNG stream if one was
// requested, toggles tracing, creates every facility, and schedules every
// initial event. It returns a lookup from facility name to the handle the
// engine assigned it.
func Apply(s *Scenario, eng *engine.Engine) (map[string]engine.FacilityHandle, error) {
	if err := eng.Init(s.Model); err != nil {
		return nil, err
	}

	if s.Stream != nil {
		if err := eng.Rand().Stream(*s.Stream); err != nil {
			return nil, err
		}
	}

	eng.Trace(s.Trace)

	handles := make(map[string]engine.FacilityHandle, len(s.Facilities))
	for _, f := range s.Facilities {
		h, err := eng.Facility(f.Name, f.Servers)
		if err != nil {
			return nil, err
		}
		handles[f.Name] = h
	}

	for _, ev := range s.Schedule {
		if err := eng.Schedule(ev.Code, ev.Delay, ev.Token); err != nil {
			return nil, err
		}
	}

	return handles, nil
}
