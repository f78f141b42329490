package powertools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdu-tools/powerswitch-mcp/pkg/powerswitch"
	"github.com/pdu-tools/powerswitch-mcp/pkg/tools/toolbox"
)

// outletIDSchema is the parameter shape shared by every single-outlet tool.
const outletIDSchema = `{
	"type": "object",
	"properties": {
		"outlet_id": {
			"type": "integer",
			"description": "Outlet number (0-7 for 8-outlet device)",
			"minimum": 0,
			"maximum": 7
		}
	},
	"required": ["outlet_id"]
}`

type outletIDInput struct {
	OutletID int `json:"outlet_id"`
}

// OutletTools returns the outlet control and inspection tools.
func OutletTools(dev Device) []toolbox.Tool {
	return []toolbox.Tool{
		{
			Name:        "outlet_on",
			Description: "Turn on a specific outlet on the Power Switch Pro device",
			InputSchema: json.RawMessage(outletIDSchema),
			Handler: func(ctx context.Context, input json.RawMessage) (string, error) {
				var in outletIDInput
				if err := json.Unmarshal(input, &in); err != nil {
					return resultError(err)
				}
				if err := dev.Outlets.On(ctx, in.OutletID); err != nil {
					return resultError(err)
				}
				return fmt.Sprintf("Outlet %d turned ON", in.OutletID+1), nil
			},
		},
		{
			Name:        "outlet_off",
			Description: "Turn off a specific outlet on the Power Switch Pro device",
			InputSchema: json.RawMessage(outletIDSchema),
			Handler: func(ctx context.Context, input json.RawMessage) (string, error) {
				var in outletIDInput
				if err := json.Unmarshal(input, &in); err != nil {
					return resultError(err)
				}
				if err := dev.Outlets.Off(ctx, in.OutletID); err != nil {
					return resultError(err)
				}
				return fmt.Sprintf("Outlet %d turned OFF", in.OutletID+1), nil
			},
		},
		{
			Name:        "outlet_cycle",
			Description: "Power cycle a specific outlet (turn off, wait, then turn back on)",
			InputSchema: json.RawMessage(outletIDSchema),
			Handler: func(ctx context.Context, input json.RawMessage) (string, error) {
				var in outletIDInput
				if err := json.Unmarshal(input, &in); err != nil {
					return resultError(err)
				}
				if err := dev.Outlets.Cycle(ctx, in.OutletID); err != nil {
					return resultError(err)
				}
				return fmt.Sprintf("Outlet %d power cycled", in.OutletID+1), nil
			},
		},
		{
			Name:        "get_outlet_state",
			Description: "Get the current power state of a specific outlet",
			InputSchema: json.RawMessage(outletIDSchema),
			Handler: func(ctx context.Context, input json.RawMessage) (string, error) {
				var in outletIDInput
				if err := json.Unmarshal(input, &in); err != nil {
					return resultError(err)
				}
				state, err := dev.Outlets.State(ctx, in.OutletID)
				if err != nil {
					return resultError(err)
				}
				return fmt.Sprintf("Outlet %d is %s", in.OutletID+1, onOff(state)), nil
			},
		},
		{
			Name:        "get_all_outlet_states",
			Description: "Get the power states of all outlets on the device",
			InputSchema: json.RawMessage(`{"type":"object","properties":{}}`),
			Handler: func(ctx context.Context, _ json.RawMessage) (string, error) {
				states, err := dev.Outlets.AllStates(ctx)
				if err != nil {
					return resultError(err)
				}
				lines := make([]string, len(states))
				for i, state := range states {
					lines[i] = fmt.Sprintf("Outlet %d: %s", i+1, onOff(state))
				}
				return strings.Join(lines, "\n"), nil
			},
		},
		{
			Name:        "get_outlet_info",
			Description: "Get detailed information about an outlet (name, state, lock status)",
			InputSchema: json.RawMessage(outletIDSchema),
			Handler: func(ctx context.Context, input json.RawMessage) (string, error) {
				var in outletIDInput
				if err := json.Unmarshal(input, &in); err != nil {
					return resultError(err)
				}
				o, err := dev.Outlets.Get(ctx, in.OutletID)
				if err != nil {
					return resultError(err)
				}
				return marshalIndent(map[string]any{
					"id":     in.OutletID,
					"name":   o.Name,
					"state":  onOff(o.State),
					"locked": o.Locked,
				})
			},
		},
		{
			Name:        "set_outlet_name",
			Description: "Set or rename an outlet on the device",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"outlet_id": {
						"type": "integer",
						"description": "Outlet number (0-7 for 8-outlet device)",
						"minimum": 0,
						"maximum": 7
					},
					"name": {
						"type": "string",
						"description": "New name for the outlet",
						"maxLength": 16
					}
				},
				"required": ["outlet_id", "name"]
			}`),
			Handler: func(ctx context.Context, input json.RawMessage) (string, error) {
				var in struct {
					OutletID int    `json:"outlet_id"`
					Name     string `json:"name"`
				}
				if err := json.Unmarshal(input, &in); err != nil {
					return resultError(err)
				}
				if err := dev.Outlets.SetName(ctx, in.OutletID, in.Name); err != nil {
					return resultError(err)
				}
				return fmt.Sprintf("Outlet %d renamed to '%s'", in.OutletID+1, in.Name), nil
			},
		},
		{
			Name:        "bulk_outlet_operation",
			Description: "Perform an operation on multiple outlets at once",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"action": {
						"type": "string",
						"description": "Action to perform: 'on', 'off', or 'cycle'",
						"enum": ["on", "off", "cycle"]
					},
					"outlet_ids": {
						"type": "array",
						"items": {"type": "integer", "minimum": 0, "maximum": 7},
						"description": "List of outlet IDs to operate on (if omitted, operates on all unlocked outlets)"
					}
				},
				"required": ["action"]
			}`),
			Handler: func(ctx context.Context, input json.RawMessage) (string, error) {
				var in struct {
					Action    string `json:"action"`
					OutletIDs *[]int `json:"outlet_ids"`
				}
				if err := json.Unmarshal(input, &in); err != nil {
					return resultError(err)
				}

				action := powerswitch.Action(in.Action)
				if !action.Valid() {
					return resultError(fmt.Errorf("unknown action %q", in.Action))
				}

				if in.OutletIDs == nil {
					// One request; the device applies the action to every
					// outlet not flagged locked.
					if err := dev.Outlets.ApplyUnlocked(ctx, action); err != nil {
						return resultError(err)
					}
					return fmt.Sprintf("Performed '%s' on all unlocked outlets", action), nil
				}

				// Sequential, no atomicity: a failure leaves earlier outlets
				// switched and later ones untouched.
				display := make([]int, 0, len(*in.OutletIDs))
				for _, id := range *in.OutletIDs {
					if err := dev.Outlets.Apply(ctx, id, action); err != nil {
						return resultError(err)
					}
					display = append(display, id+1)
				}
				return fmt.Sprintf("Performed '%s' on outlets: %v", action, display), nil
			},
		},
	}
}

func onOff(state bool) string {
	if state {
		return "ON"
	}
	return "OFF"
}

func marshalIndent(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return resultError(err)
	}
	return string(data), nil
}
