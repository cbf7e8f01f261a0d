package codec

import (
	"fmt"

	"github.com/unkn0wn-root/cachevault/compress"
	"github.com/unkn0wn-root/cachevault/crypto"
	"github.com/unkn0wn-root/cachevault/internal/wire"
)

// Pipeline encodes a value for storage and recovers it symmetrically:
//
//	Encode: serialize -> compress (best-effort, above threshold) -> encrypt
//	Decode: decrypt -> decompress (iff Metadata.Compressed) -> deserialize
//
// Compression failures fall back silently to the uncompressed form; every
// other failure propagates.
type Pipeline struct {
	ser     Serializer
	comp    *compress.Compressor
	cipher  *crypto.Cipher
	encrypt bool
}

// NewPipeline builds a pipeline. cipher may be nil; when encrypt is true and
// cipher is nil every Encode/Decode fails with ErrCryptoUnavailable (the
// capability is required but missing).
func NewPipeline(ser Serializer, comp *compress.Compressor, cipher *crypto.Cipher, encrypt bool) *Pipeline {
	return &Pipeline{ser: ser, comp: comp, cipher: cipher, encrypt: encrypt}
}

// Encode runs the value through the pipeline and reports size metadata.
// OriginalSize measures the serialized form, CompressedSize the bytes that
// will actually be persisted.
func (p *Pipeline) Encode(v any) ([]byte, Metadata, error) {
	serialized, err := p.ser.Marshal(v)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("codec: serialize: %w", err)
	}

	payload := serialized
	binary := p.ser.Binary()
	compressed := false
	if p.comp != nil {
		if out, ok := p.comp.Compress(serialized); ok {
			payload = out
			compressed = true
			binary = true
		}
	}

	if p.encrypt {
		if p.cipher == nil {
			return nil, Metadata{}, ErrCryptoUnavailable
		}
		env, err := p.cipher.Encrypt(payload, binary)
		if err != nil {
			return nil, Metadata{}, fmt.Errorf("codec: encrypt: %w", err)
		}
		payload = wire.EncodeEnvelope(env.IV, env.Ciphertext, env.Binary)
	}

	return payload, Metadata{
		Compressed:     compressed,
		OriginalSize:   len(serialized),
		CompressedSize: len(payload),
	}, nil
}

// Decode reverses Encode. Any unreadable stored payload reports ErrCorrupt.
func (p *Pipeline) Decode(payload []byte, md Metadata) (any, error) {
	if p.encrypt {
		if p.cipher == nil {
			return nil, ErrCryptoUnavailable
		}
		iv, ciphertext, binary, err := wire.DecodeEnvelope(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: envelope: %v", ErrCorrupt, err)
		}
		payload, err = p.cipher.Decrypt(crypto.Envelope{Ciphertext: ciphertext, IV: iv, Binary: binary})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
	}

	if md.Compressed {
		if p.comp == nil {
			return nil, fmt.Errorf("%w: compressed entry without compressor", ErrCorrupt)
		}
		out, err := p.comp.Decompress(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		payload = out
	}

	v, err := p.ser.Unmarshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: deserialize: %v", ErrCorrupt, err)
	}
	return v, nil
}
