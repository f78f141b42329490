// Package powertools defines the Power Switch Pro tool catalog: every MCP
// tool the server exposes, described once as data and consumed unchanged by
// both the stdio and the HTTP transport.
//
// Handlers never leak failures to the transport. Device-understood errors
// render as "Error: ..." text; anything else as "Unexpected error: ...".
package powertools

import (
	"context"
	"errors"

	"github.com/pdu-tools/powerswitch-mcp/pkg/powerswitch"
	"github.com/pdu-tools/powerswitch-mcp/pkg/tools/toolbox"
)

// OutletController is the outlet surface the tools need. Implemented by
// *powerswitch.OutletService.
type OutletController interface {
	List(ctx context.Context) ([]powerswitch.Outlet, error)
	Get(ctx context.Context, id int) (powerswitch.Outlet, error)
	State(ctx context.Context, id int) (bool, error)
	AllStates(ctx context.Context) ([]bool, error)
	On(ctx context.Context, id int) error
	Off(ctx context.Context, id int) error
	Cycle(ctx context.Context, id int) error
	SetName(ctx context.Context, id int, name string) error
	Apply(ctx context.Context, id int, action powerswitch.Action) error
	ApplyUnlocked(ctx context.Context, action powerswitch.Action) error
}

// MeterReader reads power measurements. Implemented by *powerswitch.MeterService.
type MeterReader interface {
	Values(ctx context.Context) (powerswitch.Metrics, error)
}

// AutoPingManager manages watchdog entries. Implemented by
// *powerswitch.AutoPingService.
type AutoPingManager interface {
	List(ctx context.Context) ([]powerswitch.AutoPingEntry, error)
	Get(ctx context.Context, id int) (powerswitch.AutoPingEntry, error)
	Add(ctx context.Context, p powerswitch.AutoPingParams) (powerswitch.AutoPingEntry, error)
	Update(ctx context.Context, id int, u powerswitch.AutoPingUpdate) error
	Delete(ctx context.Context, id int) error
	Enable(ctx context.Context, id int) error
	Disable(ctx context.Context, id int) error
}

// InfoReader reads the device identity block. Implemented by *powerswitch.Client.
type InfoReader interface {
	Info(ctx context.Context) (map[string]any, error)
}

// Device bundles the client surfaces the catalog operates on. It is injected
// at construction; the tools hold no other state.
type Device struct {
	Outlets  OutletController
	Meters   MeterReader
	AutoPing AutoPingManager
	Info     InfoReader
}

// NewDevice wraps a connected client as a Device.
func NewDevice(c *powerswitch.Client) Device {
	return Device{
		Outlets:  c.Outlets,
		Meters:   c.Meters,
		AutoPing: c.AutoPing,
		Info:     c,
	}
}

// Options selects optional parts of the catalog.
type Options struct {
	// AutoPing includes the watchdog tools. Deployments that should not
	// touch watchdog configuration turn this off.
	AutoPing bool
}

// DefaultOptions includes everything.
var DefaultOptions = Options{AutoPing: true}

// All returns the complete catalog for dev as a ToolBox.
func All(dev Device, opts Options) *toolbox.ToolBox {
	tb := toolbox.New()
	tb.Register(OutletTools(dev)...)
	tb.Register(MeterTools(dev)...)
	if opts.AutoPing {
		tb.Register(AutoPingTools(dev)...)
	}
	return tb
}

// resultError converts a handler failure into the text payload returned to
// the caller. The transport never sees a fault.
func resultError(err error) (string, error) {
	var devErr *powerswitch.Error
	if errors.As(err, &devErr) {
		return "Error: " + devErr.Error(), nil
	}
	return "Unexpected error: " + err.Error(), nil
}
