// Package grpcapi hosts the gRPC surface: hand-maintained protobuf wire
// codecs for the tap_aggregator.v1 and tap_aggregator.v2 packages (see
// proto/tap for the schemas) and the service implementations bridging to the
// aggregation engine.
//
// The message types are encoded directly with protowire rather than through
// generated descriptors; the byte layout is identical to what protoc emits
// for the schemas in proto/tap.
package grpcapi

import (
	"fmt"
)

// WireMessage is implemented by every message in the tapv1 and tapv2
// packages.
type WireMessage interface {
	MarshalWire() []byte
	UnmarshalWire(data []byte) error
}

// Codec is a grpc encoding codec over WireMessage values. It keeps the
// standard "proto" name so clients generated from the same schemas
// interoperate.
type Codec struct{}

// Marshal implements encoding.Codec.
func (Codec) Marshal(v interface{}) ([]byte, error) {
	m, ok := v.(WireMessage)
	if !ok {
		return nil, fmt.Errorf("grpcapi: cannot marshal %T", v)
	}
	return m.MarshalWire(), nil
}

// Unmarshal implements encoding.Codec.
func (Codec) Unmarshal(data []byte, v interface{}) error {
	m, ok := v.(WireMessage)
	if !ok {
		return fmt.Errorf("grpcapi: cannot unmarshal into %T", v)
	}
	return m.UnmarshalWire(data)
}

// Name implements encoding.Codec.
func (Codec) Name() string { return "proto" }
