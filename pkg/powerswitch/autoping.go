package powerswitch

import (
	"context"
	"fmt"
)

// AutoPingEntry is one device-resident watchdog rule: ping the addresses,
// power-cycle the bound outlets after too many consecutive failures. The ID
// is assigned by the device when the entry is created.
type AutoPingEntry struct {
	ID        int             `json:"id"`
	Addresses []string        `json:"addresses"`
	Outlets   []int           `json:"outlets"`
	Enabled   bool            `json:"enabled"`
	Interval  int             `json:"interval"` // seconds between probes
	Retries   int             `json:"retries"`  // failures before cycling
	Status    *AutoPingStatus `json:"status,omitempty"`
}

// AutoPingStatus is the device-reported probe state for an entry.
type AutoPingStatus struct {
	Hosts []AutoPingHostStatus `json:"hosts"`
}

// AutoPingHostStatus holds per-address probe counters.
type AutoPingHostStatus struct {
	State        bool `json:"state"` // true while the host answers
	SuccessCount int  `json:"success_count"`
	FailureCount int  `json:"failure_count"`
}

// Host returns the entry's first monitored address, or "" when none is set.
func (e AutoPingEntry) Host() string {
	if len(e.Addresses) == 0 {
		return ""
	}
	return e.Addresses[0]
}

// Outlet returns the entry's first bound outlet index, or -1 when none is set.
func (e AutoPingEntry) Outlet() int {
	if len(e.Outlets) == 0 {
		return -1
	}
	return e.Outlets[0]
}

// AutoPingParams describes a new watchdog entry.
type AutoPingParams struct {
	Host     string
	Outlet   int
	Enabled  bool
	Interval int // seconds
	Retries  int
}

/// AutoPingUpdate is a partial update: nil fields are left at their current
// device value.
type AutoPingUpdate struct {
	Host     *string
	Outlet   *int
	Enabled  *bool
	Interval *int
	Retries  *int
}

// AutoPingService manages the device's AutoPing watchdog entries.
type AutoPingService struct {
	client *Client
}

// List returns all entries with their status blocks.
func (s *AutoPingService) List(ctx context.Context) ([]AutoPingEntry, error) {
	var entries []AutoPingEntry
	if err := s.client.get(ctx, "autoping/items/", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Get returns one entry.
func (s *AutoPingService) Get(ctx context.Context, id int) (AutoPingEntry, error) {
	var e AutoPingEntry
	err := s.client.get(ctx, fmt.Sprintf("autoping/items/%d/", id), &e)
	return e, err
}

// Add creates an entry and returns it as stored by the device, ID included.
func (s *AutoPingService) Add(ctx context.Context, p AutoPingParams) (AutoPingEntry, error) {
	body := map[string]any{
		"addresses": []string{p.Host},
		"outlets":   []int{p.Outlet},
		"enabled":   p.Enabled,
		"interval":  p.Interval,
		"retries":   p.Retries,
	}

	var e AutoPingEntry
	if err := s.client.post(ctx, "autoping/items/", body, &e); err != nil {
		return AutoPingEntry{}, err
	}
	return e, nil
}

// Update changes only the fields set in u. An update with no fields set is a
// no-op and skips the round trip.
func (s *AutoPingService) Update(ctx context.Context, id int, u AutoPingUpdate) error {
	body := make(map[string]any)
	if u.Host != nil {
		body["addresses"] = []string{*u.Host}
	}
	if u.Outlet != nil {
		body["outlets"] = []int{*u.Outlet}
	}
	if u.Enabled != nil {
		body["enabled"] = *u.Enabled
	}
	if u.Interval != nil {
		body["interval"] = *u.Interval
	}
	if u.Retries != nil {
		body["retries"] = *u.Retries
	}
	if len(body) == 0 {
		return nil
	}

	return s.client.patch(ctx, fmt.Sprintf("autoping/items/%d/", id), body)
}

// Delete removes one entry.
func (s *AutoPingService) Delete(ctx context.Context, id int) error {
	return s.client.delete(ctx, fmt.Sprintf("autoping/items/%d/", id))
}

// Enable switches one entry's probing on.
func (s *AutoPingService) Enable(ctx context.Context, id int) error {
	return s.client.put(ctx, fmt.Sprintf("autoping/items/%d/enabled/", id), true)
}

// Disable switches one entry's probing off.
func (s *AutoPingService) Disable(ctx context.Context, id int) error {
	return s.client.put(ctx, fmt.Sprintf("autoping/items/%d/enabled/", id), false)
}
