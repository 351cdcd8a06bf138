package server

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Binary websocket frames carry the JSON envelope as a google.protobuf.Struct,
// so protobuf clients and JSON clients share one message schema.

func encodeProtoEnvelope(msg outboundMessage) ([]byte, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("flatten envelope: %w", err)
	}
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build struct: %w", err)
	}
	data, err := proto.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("marshal error: %w", err)
	}
	return data, nil
}

func decodeProtoEnvelope(data []byte) (inboundMessage, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(data, &st); err != nil {
		return inboundMessage{}, fmt.Errorf("protobuf unmarshal: %w", err)
	}
	raw, err := json.Marshal(st.AsMap())
	if err != nil {
		return inboundMessage{}, fmt.Errorf("re-encode envelope: %w", err)
	}
	var in inboundMessage
	if err := json.Unmarshal(raw, &in); err != nil {
		return inboundMessage{}, err
	}
	return in, nil
}
