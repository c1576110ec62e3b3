package rpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// jsonCodec implements encoding.Codec, marshaling messages as JSON instead
// of protobuf binary. Registering it under the name "proto" makes it the
// default codec grpc.NewServer/grpc.Dial fall back to, since no
// generator-produced message descriptors exist in this codebase (see
// DESIGN.md). Every type in this package is a plain struct with json tags,
// so this is a transparent substitution from the caller's perspective: it
// still rides the real google.golang.org/grpc transport, framing, and
// status-code machinery.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling grpc message: %w", err)
	}
	return data, nil
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshaling grpc message: %w", err)
	}
	return nil
}

func (jsonCodec) Name() string { return "proto" }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
