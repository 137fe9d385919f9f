package automation

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/san-kum/solsim/internal/body"
	"github.com/san-kum/solsim/internal/sim"
	"gopkg.in/yaml.v3"
)

var ErrInvalidEvent = errors.New("invalid event")

// Event is one timed control action. At is in simulated days, or in real
// seconds since start when Real is set, so that a paused clock can still be
// resumed by a script.
type Event struct {
	At     float64 `yaml:"at"`
	Real   bool    `yaml:"real,omitempty"`
	Action string  `yaml:"action"`
	Body   string  `yaml:"body,omitempty"`
	Value  float64 `yaml:"value,omitempty"`
}

var actions = map[string]struct{ body, value bool }{
	"speed":  {value: true},
	"faster": {},
	"slower": {},
	"pause":  {},
	"resume": {},
	"reset":  {},
	"mass":   {body: true, value: true},
	"remove": {body: true},
	"focus":  {body: true},
}

func (e Event) Validate() error {
	a, ok := actions[e.Action]
	switch {
	case !ok:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidEvent, e.Action)
	case e.At < 0:
		return fmt.Errorf("%w: %s at negative time %g", ErrInvalidEvent, e.Action, e.At)
	case a.body && e.Body == "":
		return fmt.Errorf("%w: %s needs a body", ErrInvalidEvent, e.Action)
	case e.Action == "speed" && e.Value <= 0:
		return fmt.Errorf("%w: speed must be positive, got %g", ErrInvalidEvent, e.Value)
	case e.Action == "mass" && e.Value <= 0:
		return fmt.Errorf("%w: %w", ErrInvalidEvent, body.ErrNonPositiveMass)
	}
	return nil
}

// Script fires events once each as the simulation reaches their time.
type Script struct {
	Events []Event `yaml:"events"`
	fired  []bool
}

func NewScript(events []Event) (*Script, error) {
	sc := &Script{Events: append([]Event(nil), events...)}
	if err := sc.init(); err != nil {
		return nil, err
	}
	return sc, nil
}

func (sc *Script) init() error {
	for i, e := range sc.Events {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}
	sort.SliceStable(sc.Events, func(i, j int) bool { return sc.Events[i].At < sc.Events[j].At })
	sc.fired = make([]bool, len(sc.Events))
	return nil
}

func ParseScript(data []byte) (*Script, error) {
	var sc Script
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if err := sc.init(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScript(data)
}

// Due marks and returns the events whose time has come.
func (sc *Script) Due(simTime, realTime float64) []Event {
	var due []Event
	for i, e := range sc.Events {
		if sc.fired[i] {
			continue
		}
		now := simTime
		if e.Real {
			now = realTime
		}
		if e.At <= now {
			sc.fired[i] = true
			due = append(due, e)
		}
	}
	return due
}

// Done reports whether every event has fired.
func (sc *Script) Done() bool {
	for _, f := range sc.fired {
		if !f {
			return false
		}
	}
	return true
}

// Attach runs the script from s's tick observers. Events fire at the end of
// the tick that reaches them and take effect from the next tick on. A failed
// event is logged and skipped.
func (sc *Script) Attach(s *sim.Simulation) {
	s.AddObserver(sim.ObserverFunc(func(_ []*body.Body, t float64) {
		for _, e := range sc.Due(t, s.Clock().RealElapsed()) {
			if err := Apply(s, e); err != nil {
				log.Warn("script event failed", "action", e.Action, "at", e.At, "err", err)
				continue
			}
			log.Debug("script event", "action", e.Action, "body", e.Body, "value", e.Value, "day", t)
		}
	}))
}

// Apply performs a single event on s.
func Apply(s *sim.Simulation, e Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	c := s.Clock()
	switch e.Action {
	case "speed":
		c.SetSpeed(e.Value)
	case "faster":
		c.Faster()
	case "slower":
		c.Slower()
	case "pause":
		c.Pause()
	case "resume":
		c.Resume()
	case "reset":
		s.Reset()
	case "mass":
		return s.Registry().SetMass(e.Body, e.Value)
	case "remove":
		return s.Registry().RequestRemoval(e.Body)
	case "focus":
		return s.Registry().Focus(e.Body)
	}
	return nil
}
