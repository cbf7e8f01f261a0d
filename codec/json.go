package codec

import "encoding/json"

// JSON serializes values as canonical JSON text. The zero value is ready to
// use and is the default serializer.
type JSON struct{}

var _ Serializer = JSON{}

func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (JSON) Unmarshal(b []byte) (any, error) {
	var v any
	err := json.Unmarshal(b, &v)
	return v, err
}

func (JSON) Binary() bool { return false }
