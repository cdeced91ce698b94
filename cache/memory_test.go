package cache

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if err := c.Set(ctx, "helix:users:42", []byte("payload"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, ok := c.Get(ctx, "helix:users:42")
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if !bytes.Equal(value, []byte("payload")) {
		t.Errorf("Get() = %q, want %q", value, "payload")
	}
}

func TestMemoryCache_Miss(t *testing.T) {
	c := NewMemoryCache()

	if _, ok := c.Get(context.Background(), "absent"); ok {
		t.Error("Get() ok = true for absent key, want false")
	}
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 30*time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if _, ok := c.Get(ctx, "k"); !ok {
		t.Error("Get() before expiry ok = false, want true")
	}

	time.Sleep(40 * time.Millisecond)

	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("Get() after expiry ok = true, want false")
	}
	// Lazy cleanup removed the entry.
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestMemoryCache_ZeroTTLNotStored(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("Get() ok = true for zero-TTL set, want false")
	}
}

func TestMemoryCache_Overwrite(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("old"), time.Minute)
	_ = c.Set(ctx, "k", []byte("new"), time.Minute)

	value, _ := c.Get(ctx, "k")
	if string(value) != "new" {
		t.Errorf("Get() = %q, want %q", value, "new")
	}
}

func TestMemoryCache_DeleteIdempotent(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), time.Minute)

	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("Get() ok = true after delete, want false")
	}
}

func TestMemoryCache_RejectsInvalidKey(t *testing.T) {
	c := NewMemoryCache()

	if err := c.Set(context.Background(), "bad\nkey", []byte("v"), time.Minute); err != ErrInvalidKey {
		t.Errorf("Set() error = %v, want ErrInvalidKey", err)
	}
}
