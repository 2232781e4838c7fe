package cache

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRistrettoCache(t *testing.T) {
	cacheInterface, err := NewRistrettoCache(&RistrettoConfig{
		NumCounters: 1000,
		MaxCost:     100,
		BufferItems: 64,
		Logger:      zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	defer cacheInterface.Close()

	// Cast to RistrettoCache for test-specific methods
	cache := cacheInterface.(*RistrettoCache)

	t.Run("set-and-get", func(t *testing.T) {
		success := cache.Set("decimals/0x1111", 18, 0)
		if !success {
			t.Error("expected Set to succeed")
		}

		// Wait for Ristretto to process pending writes
		cache.Wait()

		retrieved, found := cache.Get("decimals/0x1111")
		if !found {
			t.Fatal("expected key to be found")
		}
		if retrieved != 18 {
			t.Errorf("expected 18, got %v", retrieved)
		}
	})

	t.Run("get-missing-key", func(t *testing.T) {
		_, found := cache.Get("nonexistent")
		if found {
			t.Error("expected key to not be found")
		}
	})

	t.Run("delete", func(t *testing.T) {
		cache.Set("delete-test", 6, 0)
		cache.Wait()

		_, found := cache.Get("delete-test")
		if !found {
			t.Error("expected key to exist before delete")
		}

		cache.Delete("delete-test")

		_, found = cache.Get("delete-test")
		if found {
			t.Error("expected key to be deleted")
		}
	})

	t.Run("ttl-expiration", func(t *testing.T) {
		cache.Set("ttl-test", 8, 200*time.Millisecond)
		cache.Wait()

		_, found := cache.Get("ttl-test")
		if !found {
			t.Error("expected key to exist before expiry")
		}

		time.Sleep(300 * time.Millisecond)

		_, found = cache.Get("ttl-test")
		if found {
			t.Error("expected key to be expired")
		}
	})

	t.Run("clear", func(t *testing.T) {
		cache.Set("clear-test", 2, 0)
		cache.Wait()

		cache.Clear()

		_, found := cache.Get("clear-test")
		if found {
			t.Error("expected cache to be empty after clear")
		}
	})
}

func TestRistrettoCache_NilLogger(t *testing.T) {
	c, err := NewRistrettoCache(&RistrettoConfig{
		NumCounters: 100,
		MaxCost:     10,
		BufferItems: 64,
	})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	defer c.Close()

	// Set logs through the defaulted logger; must not panic.
	c.Set("k", 1, 0)
}
