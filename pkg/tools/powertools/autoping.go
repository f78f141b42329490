package powertools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdu-tools/powerswitch-mcp/pkg/powerswitch"
	"github.com/pdu-tools/powerswitch-mcp/pkg/tools/toolbox"
)

const entryIDSchema = `{
	"type": "object",
	"properties": {
		"entry_id": {
			"type": "integer",
			"description": "AutoPing entry ID",
			"minimum": 0
		}
	},
	"required": ["entry_id"]
}`

type entryIDInput struct {
	EntryID int `json:"entry_id"`
}

// AutoPingTools returns the watchdog management tools. Deployments that must
// not touch watchdog configuration leave these out of the catalog.
func AutoPingTools(dev Device) []toolbox.Tool {
	return []toolbox.Tool{
		{
			Name:        "autoping_add_entry",
			Description: "Add an AutoPing entry to monitor a host and reset an outlet if ping fails",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"host": {
						"type": "string",
						"description": "Host to ping (IP address or hostname)"
					},
					"outlet_id": {
						"type": "integer",
						"description": "Outlet number (0-7 for 8-outlet device)",
						"minimum": 0,
						"maximum": 7
					},
					"enabled": {
						"type": "boolean",
						"description": "Whether entry is enabled",
						"default": true
					},
					"interval": {
						"type": "integer",
						"description": "Ping interval in seconds",
						"default": 60,
						"minimum": 1
					},
					"retries": {
						"type": "integer",
						"description": "Number of retries before cycling outlet",
						"default": 3,
						"minimum": 1
					}
				},
				"required": ["host", "outlet_id"]
			}`),
			Handler: func(ctx context.Context, input json.RawMessage) (string, error) {
				var in struct {
					Host     string `json:"host"`
					OutletID int    `json:"outlet_id"`
					Enabled  *bool  `json:"enabled"`
					Interval *int   `json:"interval"`
					Retries  *int   `json:"retries"`
				}
				if err := json.Unmarshal(input, &in); err != nil {
					return resultError(err)
				}

				params := powerswitch.AutoPingParams{
					Host:     in.Host,
					Outlet:   in.OutletID,
					Enabled:  true,
					Interval: 60,
					Retries:  3,
				}
				if in.Enabled != nil {
					params.Enabled = *in.Enabled
				}
				if in.Interval != nil {
					params.Interval = *in.Interval
				}
				if in.Retries != nil {
					params.Retries = *in.Retries
				}

				entry, err := dev.AutoPing.Add(ctx, params)
				if err != nil {
					return resultError(err)
				}

				detail, err := marshalIndent(entry)
				if err != nil {
					return detail, err
				}
				return fmt.Sprintf("Added AutoPing entry for host %s on outlet %d\n%s",
					in.Host, in.OutletID+1, detail), nil
			},
		},
		{
			Name:        "autoping_list_entries",
			Description: "List all AutoPing entries configured on the device",
			InputSchema: json.RawMessage(`{"type":"object","properties":{}}`),
			Handler: func(ctx context.Context, _ json.RawMessage) (string, error) {
				entries, err := dev.AutoPing.List(ctx)
				if err != nil {
					return resultError(err)
				}
				if len(entries) == 0 {
					return "No AutoPing entries configured", nil
				}

				blocks := make([]string, len(entries))
				for i, e := range entries {
					blocks[i] = formatEntry(e)
				}
				return strings.Join(blocks, "\n\n"), nil
			},
		},
		{
			Name:        "autoping_get_entry",
			Description: "Get details of a specific AutoPing entry",
			InputSchema: json.RawMessage(entryIDSchema),
			Handler: func(ctx context.Context, input json.RawMessage) (string, error) {
				var in entryIDInput
				if err := json.Unmarshal(input, &in); err != nil {
					return resultError(err)
				}
				entry, err := dev.AutoPing.Get(ctx, in.EntryID)
				if err != nil {
					return resultError(err)
				}
				return marshalIndent(entry)
			},
		},
		{
			Name:        "autoping_update_entry",
			Description: "Update an existing AutoPing entry",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"entry_id": {
						"type": "integer",
						"description": "AutoPing entry ID",
						"minimum": 0
					},
					"host": {
						"type": "string",
						"description": "New host to ping (optional)"
					},
					"outlet_id": {
						"type": "integer",
						"description": "New outlet number (optional)",
						"minimum": 0,
						"maximum": 7
					},
					"enabled": {
						"type": "boolean",
						"description": "New enabled status (optional)"
					},
					"interval": {
						"type": "integer",
						"description": "New ping interval in seconds (optional)",
						"minimum": 1
					},
					"retries": {
						"type": "integer",
						"description": "New number of retries (optional)",
						"minimum": 1
					}
				},
				"required": ["entry_id"]
			}`),
			Handler: func(ctx context.Context, input json.RawMessage) (string, error) {
				var in struct {
					EntryID  int     `json:"entry_id"`
					Host     *string `json:"host"`
					OutletID *int    `json:"outlet_id"`
					Enabled  *bool   `json:"enabled"`
					Interval *int    `json:"interval"`
					Retries  *int    `json:"retries"`
				}
				if err := json.Unmarshal(input, &in); err != nil {
					return resultError(err)
				}

				update := powerswitch.AutoPingUpdate{
					Host:     in.Host,
					Outlet:   in.OutletID,
					Enabled:  in.Enabled,
					Interval: in.Interval,
					Retries:  in.Retries,
				}
				if err := dev.AutoPing.Update(ctx, in.EntryID, update); err != nil {
					return resultError(err)
				}
				return fmt.Sprintf("AutoPing entry %d updated successfully", in.EntryID), nil
			},
		},
		{
			Name:        "autoping_delete_entry",
			Description: "Delete an AutoPing entry",
			InputSchema: json.RawMessage(entryIDSchema),
			Handler: func(ctx context.Context, input json.RawMessage) (string, error) {
				var in entryIDInput
				if err := json.Unmarshal(input, &in); err != nil {
					return resultError(err)
				}
				if err := dev.AutoPing.Delete(ctx, in.EntryID); err != nil {
					return resultError(err)
				}
				return fmt.Sprintf("AutoPing entry %d deleted successfully", in.EntryID), nil
			},
		},
		{
			Name:        "autoping_enable_entry",
			Description: "Enable an AutoPing entry",
			InputSchema: json.RawMessage(entryIDSchema),
			Handler: func(ctx context.Context, input json.RawMessage) (string, error) {
				var in entryIDInput
				if err := json.Unmarshal(input, &in); err != nil {
					return resultError(err)
				}
				if err := dev.AutoPing.Enable(ctx, in.EntryID); err != nil {
					return resultError(err)
				}
				return fmt.Sprintf("AutoPing entry %d enabled successfully", in.EntryID), nil
			},
		},
		{
			Name:        "autoping_disable_entry",
			Description: "Disable an AutoPing entry",
			InputSchema: json.RawMessage(entryIDSchema),
			Handler: func(ctx context.Context, input json.RawMessage) (string, error) {
				var in entryIDInput
				if err := json.Unmarshal(input, &in); err != nil {
					return resultError(err)
				}
				if err := dev.AutoPing.Disable(ctx, in.EntryID); err != nil {
					return resultError(err)
				}
				return fmt.Sprintf("AutoPing entry %d disabled successfully", in.EntryID), nil
			},
		},
	}
}

// formatEntry renders one entry the way operators read it: first monitored
// host, 1-based outlet, probe state and counters.
func formatEntry(e powerswitch.AutoPingEntry) string {
	var state bool
	var success, failures int
	if e.Status != nil && len(e.Status.Hosts) > 0 {
		state = e.Status.Hosts[0].State
		success = e.Status.Hosts[0].SuccessCount
		failures = e.Status.Hosts[0].FailureCount
	}

	activity := "Inactive"
	if state {
		activity = "Active"
	}

	return fmt.Sprintf("Entry %d:\n  Host: %s\n  Outlet: %d\n  Enabled: %t\n  State: %s\n  Success: %d | Failures: %d",
		e.ID, e.Host(), e.Outlet()+1, e.Enabled, activity, success, failures)
}
