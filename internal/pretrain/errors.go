package pretrain

import "fmt"

// SchemaError reports a required field or column that is absent or
// malformed in the incoming data.
type SchemaError struct {
	Field  string // Field or column name
	Reason string // What about it violated the contract
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema violation: field %q: %s", e.Field, e.Reason)
}

// ConfigError reports an invalid construction-time option. It is always
// raised by the constructors, never deferred to call time.
type ConfigError struct {
	Option string // Option name
	Reason string // Why the value is invalid
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: option %q: %s", e.Option, e.Reason)
}

// RangeError reports an input whose size makes the requested operation
// impossible, such as a chunk too short to split into two segments.
type RangeError struct {
	Op string // Operation that failed
	N  int    // Offending size
}

// Error implements the error interface.
func (e *RangeError) Error() string {
	return fmt.Sprintf("degenerate range: %s impossible for length %d", e.Op, e.N)
}
