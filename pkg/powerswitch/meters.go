package powerswitch

import "context"

// Metrics is an ephemeral snapshot of the device's power measurements.
type Metrics struct {
	Voltage float64 `json:"voltage"` // volts
	Current float64 `json:"current"` // amps
	Power   float64 `json:"power"`   // watts
	Energy  float64 `json:"energy"`  // cumulative kWh
}

// MeterService reads the device's power measurements.
type MeterService struct {
	client *Client
}

// Values reads one snapshot of all measurements.
func (s *MeterService) Values(ctx context.Context) (Metrics, error) {
	var m Metrics
	err := s.client.get(ctx, "meter/values/", &m)
	return m, err
}
