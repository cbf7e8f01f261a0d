package compress

import (
	"bytes"
	"crypto/rand"
	"strings"
	"testing"
)

func TestBelowThresholdPassthrough(t *testing.T) {
	c, err := New(Config{Enabled: true, Threshold: 1024})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := []byte("small")
	out, compressed := c.Compress(data)
	if compressed {
		t.Fatalf("payload below threshold should not compress")
	}
	if !bytes.Equal(out, data) {
		t.Fatalf("passthrough mutated data")
	}
}

func TestDisabledPassthrough(t *testing.T) {
	c, err := New(Config{Enabled: false})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := []byte(strings.Repeat("a", 4096))
	if _, compressed := c.Compress(data); compressed {
		t.Fatalf("disabled compressor must not compress")
	}
}

func TestCompressRoundTrip(t *testing.T) {
	c, err := New(Config{Enabled: true, Level: 6, Threshold: 64})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := []byte(strings.Repeat("cachevault ", 500))

	out, compressed := c.Compress(data)
	if !compressed {
		t.Fatalf("repetitive payload should compress")
	}
	if len(out) >= len(data) {
		t.Fatalf("compressed output not smaller: %d >= %d", len(out), len(data))
	}

	back, err := c.Decompress(out)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(back, data) {
		t.Fatalf("round trip mismatch")
	}
}

// TestIncompressiblePassthrough stores random bytes: gzip cannot shrink
// them, so the compressor must fall back to the original form.
func TestIncompressiblePassthrough(t *testing.T) {
	c, err := New(Config{Enabled: true, Threshold: 64})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := make([]byte, 4096)
	if _, err := rand.Read(data); err != nil {
		t.Fatalf("rand: %v", err)
	}
	out, compressed := c.Compress(data)
	if compressed {
		t.Fatalf("random payload reported compressed")
	}
	if !bytes.Equal(out, data) {
		t.Fatalf("fallback mutated data")
	}
}

func TestDecompressGarbage(t *testing.T) {
	c, _ := New(Config{Enabled: true})
	if _, err := c.Decompress([]byte("definitely not gzip")); err == nil {
		t.Fatalf("expected error decompressing garbage")
	}
}

func TestInvalidLevel(t *testing.T) {
	for _, level := range []int{-2, 10, 42} {
		if _, err := New(Config{Enabled: true, Level: level}); err == nil {
			t.Errorf("level %d: expected error", level)
		}
	}
}

func TestDefaults(t *testing.T) {
	c, err := New(Config{Enabled: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Threshold() != DefaultThreshold {
		t.Fatalf("threshold default: got %d", c.Threshold())
	}
	if !c.Enabled() {
		t.Fatalf("enabled flag lost")
	}
}
