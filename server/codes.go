package server

import "github.com/filecoin-project/go-jsonrpc"

// The JSON-RPC spec reserves [-32000, -32099] for application codes. Errors
// occupy [-32000, -32049] and warnings [-32050, -32099] so the two ranges
// never overlap.
const (
	// ErrCodeGeneric is reserved for errors without a specific code.
	ErrCodeGeneric jsonrpc.ErrorCode = -32000
	// ErrCodeInvalidVersion rejects an unsupported API version.
	ErrCodeInvalidVersion jsonrpc.ErrorCode = -32001
	// ErrCodeAggregation covers cryptographic and invariant failures during
	// receipt aggregation.
	ErrCodeAggregation jsonrpc.ErrorCode = -32002

	// WarnCodeGeneric is reserved for warnings without a specific code.
	WarnCodeGeneric = -32050
	// WarnCodeDeprecatedVersion marks a deprecated but still accepted API version.
	WarnCodeDeprecatedVersion = -32051
)
