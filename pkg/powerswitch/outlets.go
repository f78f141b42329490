package powerswitch

import (
	"context"
	"fmt"
)

// Action is a power operation applied to one or more outlets.
type Action string

const (
	ActionOn    Action = "on"
	ActionOff   Action = "off"
	ActionCycle Action = "cycle"
)

// Valid reports whether a is one of the defined actions.
func (a Action) Valid() bool {
	return a == ActionOn || a == ActionOff || a == ActionCycle
}

// Outlet is one switched socket as the device reports it.
type Outlet struct {
	Name          string `json:"name"`
	State         bool   `json:"state"`
	PhysicalState bool   `json:"physical_state"`
	Locked        bool   `json:"locked"`
}

// OutletService operates on the device's relay outlets, addressed by
// zero-based index.
type OutletService struct {
	client *Client
}

// List returns all outlets in index order.
func (s *OutletService) List(ctx context.Context) ([]Outlet, error) {
	var outlets []Outlet
	if err := s.client.get(ctx, "relay/outlets/", &outlets); err != nil {
		return nil, err
	}
	return outlets, nil
}

// Get returns one outlet.
func (s *OutletService) Get(ctx context.Context, id int) (Outlet, error) {
	var o Outlet
	err := s.client.get(ctx, fmt.Sprintf("relay/outlets/%d/", id), &o)
	return o, err
}

// State returns the switched state of one outlet.
func (s *OutletService) State(ctx context.Context, id int) (bool, error) {
	var state bool
	err := s.client.get(ctx, fmt.Sprintf("relay/outlets/%d/state/", id), &state)
	return state, err
}

// AllStates returns the switched state of every outlet, in index order, with
// a single request.
func (s *OutletService) AllStates(ctx context.Context) ([]bool, error) {
	var states []bool
	if err := s.client.get(ctx, "relay/outlets/all;/state/", &states); err != nil {
		return nil, err
	}
	return states, nil
}

// On switches one outlet on.
func (s *OutletService) On(ctx context.Context, id int) error {
	return s.client.put(ctx, fmt.Sprintf("relay/outlets/%d/state/", id), true)
}

// Off switches one outlet off.
func (s *OutletService) Off(ctx context.Context, id int) error {
	return s.client.put(ctx, fmt.Sprintf("relay/outlets/%d/state/", id), false)
}

// Cycle power-cycles one outlet: off, a device-side delay, then on.
func (s *OutletService) Cycle(ctx context.Context, id int) error {
	return s.client.post(ctx, fmt.Sprintf("relay/outlets/%d/cycle/", id), nil, nil)
}

// SetName renames one outlet. The device enforces its own length limit.
func (s *OutletService) SetName(ctx context.Context, id int, name string) error {
	return s.client.put(ctx, fmt.Sprintf("relay/outlets/%d/name/", id), name)
}

// Apply performs action on one outlet.
func (s *OutletService) Apply(ctx context.Context, id int, action Action) error {
	switch action {
	case ActionOn:
		return s.On(ctx, id)
	case ActionOff:
		return s.Off(ctx, id)
	case ActionCycle:
		return s.Cycle(ctx, id)
	default:
		return fmt.Errorf("powerswitch: unknown action %q", action)
	}
}

// ApplyUnlocked performs action on every outlet not flagged locked, as a
// single request against the device's matrix-URI selector. The device applies
// the action; no per-outlet iteration happens client-side.
func (s *OutletService) ApplyUnlocked(ctx context.Context, action Action) error {
	switch action {
	case ActionOn:
		return s.client.put(ctx, "relay/outlets/all;locked=false/state/", true)
	case ActionOff:
		return s.client.put(ctx, "relay/outlets/all;locked=false/state/", false)
	case ActionCycle:
		return s.client.post(ctx, "relay/outlets/all;locked=false/cycle/", nil, nil)
	default:
		return fmt.Errorf("powerswitch: unknown action %q", action)
	}
}
