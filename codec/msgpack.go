package codec

import "github.com/vmihailenco/msgpack/v5"

// Msgpack serializes values using vmihailenco/msgpack/v5. The zero value is
// ready to use.
//
// Msgpack is compact and fast; note that it preserves integer widths, so a
// value stored as an int comes back as a sized integer rather than float64.
type Msgpack struct{}

var _ Serializer = Msgpack{}

func (Msgpack) Marshal(v any) ([]byte, error) { return msgpack.Marshal(v) }

func (Msgpack) Unmarshal(b []byte) (any, error) {
	var v any
	err := msgpack.Unmarshal(b, &v)
	return v, err
}

func (Msgpack) Binary() bool { return true }
