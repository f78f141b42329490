package powerswitch

import "fmt"

// Error is a failure the device (or its REST layer) understood and answered:
// bad credentials, unknown outlet, malformed value, unreachable endpoint.
// Callers can distinguish it from unexpected failures with errors.As.
type Error struct {
	StatusCode int    // HTTP status, 0 when the request never completed
	Message    string // device-reported message, or a transport description
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}
