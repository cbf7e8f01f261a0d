package readcache

import "testing"

func TestMapLifecycle(t *testing.T) {
	c := NewMap()

	if _, ok := c.Get("k"); ok {
		t.Fatalf("empty cache should miss")
	}

	c.Set("k", map[string]any{"x": 1.0})
	v, ok := c.Get("k")
	if !ok {
		t.Fatalf("set value should hit")
	}
	if m := v.(map[string]any); m["x"] != 1.0 {
		t.Fatalf("value mismatch: %v", v)
	}

	c.Del("k")
	if _, ok := c.Get("k"); ok {
		t.Fatalf("deleted key should miss")
	}

	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()
	if _, ok := c.Get("a"); ok {
		t.Fatalf("cleared cache should miss")
	}
	if _, ok := c.Get("b"); ok {
		t.Fatalf("cleared cache should miss")
	}
}

func TestRistrettoLifecycle(t *testing.T) {
	c, err := NewRistretto(RistrettoConfig{NumCounters: 1000, MaxCost: 100, BufferItems: 64})
	if err != nil {
		t.Fatalf("NewRistretto: %v", err)
	}
	defer c.Close()

	c.Set("k", "v")
	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Fatalf("Get after Set: %v %v", v, ok)
	}

	c.Del("k")
	if _, ok := c.Get("k"); ok {
		t.Fatalf("deleted key should miss")
	}
}

func TestRistrettoInvalidConfig(t *testing.T) {
	if _, err := NewRistretto(RistrettoConfig{}); err == nil {
		t.Fatalf("expected config error")
	}
}
