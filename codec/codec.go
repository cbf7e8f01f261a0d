// Package codec turns dynamic values into persisted payloads and back:
// serialize, optionally compress above a threshold, optionally encrypt.
// Decode reverses the pipeline symmetrically.
package codec

import "errors"

var (
	// ErrCryptoUnavailable reports that encryption was requested but no
	// cipher capability is available.
	ErrCryptoUnavailable = errors.New("codec: encryption unavailable")

	// ErrCorrupt reports a stored payload that cannot be decrypted,
	// decompressed, or deserialized.
	ErrCorrupt = errors.New("codec: corrupt payload")
)

// Serializer (de)serializes dynamic values (maps, slices, primitives).
// Unmarshal must return the structural form of the original value, not a
// concrete caller type.
type Serializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(b []byte) (any, error)

	// Binary reports whether the serialized form is a binary format rather
	// than text. The pipeline records it so decryption can reverse format
	// conversion correctly.
	Binary() bool
}

// Metadata describes how an entry's payload was encoded. Sizes are byte
// lengths of the encoded forms, never character counts.
type Metadata struct {
	// Compressed is true iff the persisted payload differs from the plain
	// serialized form.
	Compressed bool `json:"compressed"`

	// OriginalSize is the byte length of the pre-compression serialized form.
	OriginalSize int `json:"originalSize"`

	// CompressedSize is the byte length of what was actually persisted.
	CompressedSize int `json:"compressedSize"`
}
