// Package tapv2 contains the tap_aggregator.v2 protobuf messages and their
// wire codecs. The field numbers and layout match proto/tap/v2.proto. The
// whole surface is excluded by the no_v2 build tag.
package tapv2
