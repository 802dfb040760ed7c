// Package api describes the DocVerify gRPC contract shared by the server and
// the CLI client.
//
// The service is declared by hand rather than generated: every method
// exchanges protobuf well-known types (google.protobuf.Struct, Empty and
// StringValue), and the typed request/response structs below travel inside
// a Struct through protojson. Any gRPC client that can build a Struct can
// call the service without a .proto file.
package api

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "docverify.v1.DocVerifyService"

// Method names.
const (
	MethodPing             = "Ping"
	MethodRegister         = "Register"
	MethodLogin            = "Login"
	MethodRefreshToken     = "RefreshToken"
	MethodCreateDocument   = "CreateDocument"
	MethodFinalizeDocument = "FinalizeDocument"
	MethodSignDocument     = "SignDocument"
	MethodStampDocument    = "StampDocument"
	MethodListSignatures   = "ListSignatures"
	MethodLookupCode       = "LookupCode"
)

// PingStatus is the payload Ping answers with.
const PingStatus = "OK"

// FullMethod returns the "/service/method" path used on the wire.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// ToStruct converts a JSON-serializable value into a protobuf Struct.
func ToStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return s, nil
}

// FromStruct decodes a protobuf Struct into v.
// A nil Struct leaves v untouched.
func FromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		return nil
	}
	raw, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
