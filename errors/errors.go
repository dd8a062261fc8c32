// Package errors provides error handling for ideprobe.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Sentinel errors for the connection/call taxonomy
//
// Usage:
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrTimeout) {
//	    // handle timeout
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	WithHint     = crdb.WithHint
	WithHintf    = crdb.WithHintf
)

// Error inspection
var (
	Is     = crdb.Is
	IsAny  = crdb.IsAny
	As     = crdb.As
	Unwrap = crdb.Unwrap
)

// Sentinel errors for the connection and call failure taxonomy.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrUnavailable indicates the MCP server never became ready within the
	// connection deadline. Retrying is the lifecycle layer's job; callers
	// seeing this have already exhausted the retry budget.
	ErrUnavailable = New("mcp server unavailable")

	// ErrNoEndpoint indicates the SSE stream closed or timed out before
	// announcing the message submission endpoint.
	ErrNoEndpoint = New("no message endpoint announced")

	// ErrSubmitFailed indicates the side-channel POST was rejected or
	// unreachable. Fatal to the one call, never retried by the correlator.
	ErrSubmitFailed = New("request submission failed")

	// ErrTimeout indicates no response with the expected id arrived before
	// the call deadline.
	ErrTimeout = New("timed out waiting for response")
)
