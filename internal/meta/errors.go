package meta

import "fmt"

// TargetUnresolvableError is returned when neither a path nor an object
// could be determined for a metadata request. It indicates a caller
// mistake and is surfaced rather than swallowed.
type TargetUnresolvableError struct {
	Reason string
}

func (e *TargetUnresolvableError) Error() string {
	if e.Reason == "" {
		return "metadata target could not be resolved"
	}
	return "metadata target could not be resolved: " + e.Reason
}

// UnknownGroupError is returned when a caller names a metadata definition
// that was never registered.
type UnknownGroupError struct {
	Name string
}

func (e *UnknownGroupError) Error() string {
	return fmt.Sprintf("unknown metadata group: %s", e.Name)
}
