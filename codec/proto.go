package codec

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Proto serializes values through google.protobuf.Value, so entries stay
// readable by non-Go consumers that speak protobuf. The zero value is ready
// to use.
//
// Like JSON, all numbers come back as float64 and only JSON-shaped values
// (maps with string keys, slices, primitives, nil) are representable.
type Proto struct{}

var _ Serializer = Proto{}

func (Proto) Marshal(v any) ([]byte, error) {
	pv, err := structpb.NewValue(v)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(pv)
}

func (Proto) Unmarshal(b []byte) (any, error) {
	var pv structpb.Value
	if err := proto.Unmarshal(b, &pv); err != nil {
		return nil, err
	}
	return pv.AsInterface(), nil
}

func (Proto) Binary() bool { return true }
