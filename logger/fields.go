package logger

// Standard field names for consistent structured logging across ideprobe.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Network
	FieldAddress = "address"
	FieldPort    = "port"
	FieldPath    = "path"
	FieldStatus  = "status"

	// RPC
	FieldMethod    = "method"
	FieldRequestID = "request_id"

	// Timing
	FieldTimeout   = "timeout"
	FieldRemaining = "remaining"
	FieldAttempt   = "attempt"

	// Files
	FieldFile  = "file"
	FieldCount = "count"

	// Errors
	FieldError = "error"
)
