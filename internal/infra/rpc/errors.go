package rpc

import (
	"errors"
	"fmt"
)

// Kind classifies why an RPC call failed.
type Kind int

const (
	KindTransport  Kind = iota + 1 // connection refused, DNS failure, timeout
	KindHTTPStatus                 // non-2xx response
	KindMalformed                  // body is not JSON or has no usable result
	KindProtocol                   // JSON-RPC error object in the response
	KindHexDecode                  // result is not a hex quantity
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindHTTPStatus:
		return "http_status"
	case KindMalformed:
		return "malformed_body"
	case KindProtocol:
		return "rpc_protocol"
	case KindHexDecode:
		return "hex_decode"
	default:
		return "unknown"
	}
}

// Error is returned by Client for every failed call.
type Error struct {
	Kind       Kind
	Endpoint   string
	StatusCode int    // set for KindHTTPStatus
	Message    string // detail, e.g. the JSON-RPC error message
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		if e.Message != "" {
			return fmt.Sprintf("%s: http %d: %s", e.Endpoint, e.StatusCode, e.Message)
		}
		return fmt.Sprintf("%s: http %d", e.Endpoint, e.StatusCode)
	case KindProtocol:
		return fmt.Sprintf("%s: rpc error: %s", e.Endpoint, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Endpoint, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Endpoint, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr.Kind
	}
	return 0
}
