package codec

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/unkn0wn-root/cachevault/compress"
	"github.com/unkn0wn-root/cachevault/crypto"
)

func newTestPipeline(t *testing.T, ser Serializer, compression bool, secret string) *Pipeline {
	t.Helper()
	comp, err := compress.New(compress.Config{Enabled: compression, Threshold: 64})
	if err != nil {
		t.Fatalf("compress.New: %v", err)
	}
	var cipher *crypto.Cipher
	if secret != "" {
		cipher, err = crypto.New(secret)
		if err != nil {
			t.Fatalf("crypto.New: %v", err)
		}
	}
	return NewPipeline(ser, comp, cipher, secret != "")
}

// TestRoundTripMatrix covers every combination of {compression off/on,
// encryption off/on} across the supported value shapes.
func TestRoundTripMatrix(t *testing.T) {
	values := map[string]any{
		"object": map[string]any{"name": "Ada", "age": 36.0, "active": true},
		"nested": map[string]any{"a": map[string]any{"b": []any{1.0, 2.0}}},
		"array":  []any{"x", 1.5, false, nil},
		"string": strings.Repeat("repetitive payload ", 40), // above threshold
		"number": 42.5,
		"bool":   true,
		"null":   nil,
	}
	for _, compression := range []bool{false, true} {
		for _, secret := range []string{"", "shared-secret"} {
			p := newTestPipeline(t, JSON{}, compression, secret)
			for name, v := range values {
				payload, md, err := p.Encode(v)
				if err != nil {
					t.Fatalf("Encode(%s, comp=%v, enc=%v): %v", name, compression, secret != "", err)
				}
				if md.CompressedSize != len(payload) {
					t.Fatalf("%s: CompressedSize %d != persisted %d", name, md.CompressedSize, len(payload))
				}
				got, err := p.Decode(payload, md)
				if err != nil {
					t.Fatalf("Decode(%s): %v", name, err)
				}
				if !reflect.DeepEqual(got, v) {
					t.Fatalf("%s: round trip mismatch: %#v != %#v", name, got, v)
				}
			}
		}
	}
}

func TestSerializers(t *testing.T) {
	v := map[string]any{"name": "Ada", "tags": []any{"x", "y"}}

	sers := map[string]Serializer{
		"json":    JSON{},
		"msgpack": Msgpack{},
		"cbor":    MustCBOR(false),
		"proto":   Proto{},
	}
	for name, ser := range sers {
		p := newTestPipeline(t, ser, false, "")
		payload, md, err := p.Encode(v)
		if err != nil {
			t.Fatalf("%s: Encode: %v", name, err)
		}
		got, err := p.Decode(payload, md)
		if err != nil {
			t.Fatalf("%s: Decode: %v", name, err)
		}
		m, ok := got.(map[string]any)
		if !ok {
			t.Fatalf("%s: decoded to %T, want map[string]any", name, got)
		}
		if m["name"] != "Ada" {
			t.Fatalf("%s: name mismatch: %v", name, m["name"])
		}
	}
}

func TestCompressionMetadata(t *testing.T) {
	p := newTestPipeline(t, JSON{}, true, "")
	big := strings.Repeat("a", 2000)

	payload, md, err := p.Encode(big)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !md.Compressed {
		t.Fatalf("2000 repeated chars should compress")
	}
	if md.CompressedSize >= md.OriginalSize {
		t.Fatalf("no savings: %d >= %d", md.CompressedSize, md.OriginalSize)
	}
	if md.CompressedSize != len(payload) {
		t.Fatalf("CompressedSize %d != persisted %d", md.CompressedSize, len(payload))
	}
}

func TestSmallValueNotCompressed(t *testing.T) {
	p := newTestPipeline(t, JSON{}, true, "")
	_, md, err := p.Encode(map[string]any{"x": 1.0})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if md.Compressed {
		t.Fatalf("sub-threshold value reported compressed")
	}
	if md.OriginalSize != md.CompressedSize {
		t.Fatalf("sizes should match when untouched: %d != %d", md.OriginalSize, md.CompressedSize)
	}
}

// Encryption hides the payload but leaves OriginalSize/Compressed meaningful.
func TestEncryptedPayloadOpaque(t *testing.T) {
	p := newTestPipeline(t, JSON{}, false, "shared-secret")
	payload, _, err := p.Encode(map[string]any{"secret": "value"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.Contains(string(payload), "secret") {
		t.Fatalf("plaintext leaked into persisted payload")
	}
}

func TestCryptoUnavailable(t *testing.T) {
	comp, _ := compress.New(compress.Config{})
	p := NewPipeline(JSON{}, comp, nil, true) // encryption requested, no cipher

	if _, _, err := p.Encode("x"); !errors.Is(err, ErrCryptoUnavailable) {
		t.Fatalf("Encode: expected ErrCryptoUnavailable, got %v", err)
	}
	if _, err := p.Decode([]byte("payload"), Metadata{}); !errors.Is(err, ErrCryptoUnavailable) {
		t.Fatalf("Decode: expected ErrCryptoUnavailable, got %v", err)
	}
}

func TestDecodeCorrupt(t *testing.T) {
	plain := newTestPipeline(t, JSON{}, false, "")
	if _, err := plain.Decode([]byte("{broken"), Metadata{}); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt for bad JSON, got %v", err)
	}

	compressed := newTestPipeline(t, JSON{}, true, "")
	if _, err := compressed.Decode([]byte("not gzip"), Metadata{Compressed: true}); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt for bad gzip, got %v", err)
	}

	encrypted := newTestPipeline(t, JSON{}, false, "shared-secret")
	if _, err := encrypted.Decode([]byte("not an envelope"), Metadata{}); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt for bad envelope, got %v", err)
	}

	// valid envelope under a different key
	other := newTestPipeline(t, JSON{}, false, "other-secret")
	payload, md, err := other.Encode("x")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := encrypted.Decode(payload, md); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt for wrong key, got %v", err)
	}
}

func TestLimitSerializer(t *testing.T) {
	l := Limit{Inner: JSON{}, MaxDecode: 8}
	if _, err := l.Unmarshal([]byte(`"a much longer payload"`)); err == nil {
		t.Fatalf("expected limit error")
	}
	v, err := l.Unmarshal([]byte(`"ok"`))
	if err != nil || v != "ok" {
		t.Fatalf("small payload should pass: %v %v", v, err)
	}
}
