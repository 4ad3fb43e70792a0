package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/filecoin-project/go-jsonrpc"

	"tap-aggregator/core"
)

// RPCErrors is the error registry shared by the server and any Go client, so
// typed errors survive the wire round trip.
var RPCErrors = jsonrpc.NewErrors()

func init() {
	RPCErrors.Register(ErrCodeInvalidVersion, new(*VersionError))
	RPCErrors.Register(ErrCodeAggregation, new(*AggregationError))
}

// VersionError rejects an unsupported API version. The supported and
// deprecated version lists ride along as error data.
type VersionError struct {
	Version  string
	Versions VersionsInfo
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("unsupported API version %q", e.Version)
}

// ToJSONRPCError implements jsonrpc.RPCErrorCodec.
func (e *VersionError) ToJSONRPCError() (jsonrpc.JSONRPCError, error) {
	data, err := json.Marshal(e.Versions)
	if err != nil {
		return jsonrpc.JSONRPCError{}, err
	}
	return jsonrpc.JSONRPCError{
		Code:    ErrCodeInvalidVersion,
		Message: e.Error(),
		Meta:    data,
	}, nil
}

// FromJSONRPCError implements jsonrpc.RPCErrorCodec.
func (e *VersionError) FromJSONRPCError(jerr jsonrpc.JSONRPCError) error {
	if len(jerr.Meta) > 0 {
		if err := json.Unmarshal(jerr.Meta, &e.Versions); err != nil {
			return err
		}
	}
	return nil
}

// AggregationError is the wire form of every engine failure: the message is a
// short diagnostic and no sensitive data is attached.
type AggregationError struct {
	Message string
}

func (e *AggregationError) Error() string { return e.Message }

// ToJSONRPCError implements jsonrpc.RPCErrorCodec.
func (e *AggregationError) ToJSONRPCError() (jsonrpc.JSONRPCError, error) {
	return jsonrpc.JSONRPCError{Code: ErrCodeAggregation, Message: e.Message}, nil
}

// FromJSONRPCError implements jsonrpc.RPCErrorCodec.
func (e *AggregationError) FromJSONRPCError(jerr jsonrpc.JSONRPCError) error {
	e.Message = jerr.Message
	return nil
}

// errorKindLabel renders the engine error kind as a metrics label.
func errorKindLabel(err error) string {
	if kind := core.KindOf(err); kind != 0 {
		return kind.String()
	}
	return "unknown"
}

// wireError maps an engine error to its JSON-RPC form.
func wireError(err error) error {
	var verr *VersionError
	if errors.As(err, &verr) {
		return verr
	}
	if kind := core.KindOf(err); kind != 0 {
		return &AggregationError{Message: err.Error()}
	}
	return &AggregationError{Message: "aggregation failed"}
}
