package powertools

import (
	"context"
	"encoding/json"

	"github.com/pdu-tools/powerswitch-mcp/pkg/tools/toolbox"
)

// MeterTools returns the telemetry and device-identity tools.
func MeterTools(dev Device) []toolbox.Tool {
	return []toolbox.Tool{
		{
			Name:        "get_power_metrics",
			Description: "Get real-time power metrics (voltage, current, power) from the device",
			InputSchema: json.RawMessage(`{"type":"object","properties":{}}`),
			Handler: func(ctx context.Context, _ json.RawMessage) (string, error) {
				m, err := dev.Meters.Values(ctx)
				if err != nil {
					return resultError(err)
				}
				return marshalIndent(map[string]any{
					"voltage_v":  m.Voltage,
					"current_a":  m.Current,
					"power_w":    m.Power,
					"energy_kwh": m.Energy,
				})
			},
		},
		{
			Name:        "get_device_info",
			Description: "Get device information (serial number, firmware version, etc.)",
			InputSchema: json.RawMessage(`{"type":"object","properties":{}}`),
			Handler: func(ctx context.Context, _ json.RawMessage) (string, error) {
				info, err := dev.Info.Info(ctx)
				if err != nil {
					return resultError(err)
				}
				return marshalIndent(info)
			},
		},
	}
}
