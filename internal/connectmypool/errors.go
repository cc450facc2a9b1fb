package connectmypool

import "fmt"

// TransportError covers network failures, non-2xx HTTP statuses, and
// payloads that are not JSON objects. These are transient and retried by
// the next scheduled poll, never by the client itself.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("connectmypool %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is a request the cloud accepted at the HTTP level but rejected
// with a failure_code in the body. The concrete types below are what
// callers match on.
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("connectmypool api error %d: %s", e.Code, e.Description)
}

// AuthError means the pool API code or key is invalid or disabled
// (failure codes 3, 4, 5). Terminal until reconfigured.
type AuthError struct {
	APIError
}

// ThrottleError means the cloud refused a read inside its minimum poll
// interval (failure code 6). Masked by the cache when possible.
type ThrottleError struct {
	APIError
}

// NotConnectedError means the pool controller is offline from the cloud's
// point of view (failure code 7).
type NotConnectedError struct {
	APIError
}

// ActionError is any other request-level rejection, typically bad
// parameters.
type ActionError struct {
	APIError
}

// UnreachableModeError is returned when cycling a device did not land on
// the requested mode within the attempt bound. The device may not support
// the mode, or its cycle order skips it.
type UnreachableModeError struct {
	DeviceNumber int
	Desired      int
	Attempts     int
}

func (e *UnreachableModeError) Error() string {
	return fmt.Sprintf("connectmypool device %d: mode %d not reached after %d cycles",
		e.DeviceNumber, e.Desired, e.Attempts)
}

// classify maps an embedded failure_code to a typed error. Payloads with
// no failure_code pass through untouched.
func classify(payload map[string]any) error {
	raw, ok := payload["failure_code"]
	if !ok {
		return nil
	}

	code := intValue(raw, -1)
	desc := "Unknown error"
	if d, ok := payload["failure_description"].(string); ok && d != "" {
		desc = d
	}

	apiErr := APIError{Code: code, Description: desc}
	switch code {
	case 3, 4, 5:
		return &AuthError{apiErr}
	case failureCodeThrottled:
		return &ThrottleError{apiErr}
	case failureCodeNotConnected:
		return &NotConnectedError{apiErr}
	default:
		return &ActionError{apiErr}
	}
}

// intValue coerces JSON numbers (and the occasional stringly-typed field
// the cloud emits) to int.
func intValue(v any, fallback int) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		var out int
		if _, err := fmt.Sscanf(n, "%d", &out); err == nil {
			return out
		}
	}
	return fallback
}
