package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/travelperks/dealdedup/internal/domain"
)

func newTestCache(t *testing.T) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(0)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	ctx := context.Background()

	t.Run("string value round-trips unchanged", func(t *testing.T) {
		cache := newTestCache(t)
		if err := cache.Set(ctx, "k", "value", time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		got, err := cache.Get(ctx, "k")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got != "value" {
			t.Errorf("Get() = %v, want value", got)
		}
	})

	t.Run("struct value comes back as JSON map", func(t *testing.T) {
		cache := newTestCache(t)
		report := &domain.MatchReport{RunID: "run-1", Threshold: 120, Source: "Engine"}
		if err := cache.Set(ctx, "report", report, time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		got, err := cache.Get(ctx, "report")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		m, ok := got.(map[string]interface{})
		if !ok {
			t.Fatalf("Get() type = %T, want map[string]interface{}", got)
		}
		if m["runId"] != "run-1" {
			t.Errorf("runId = %v, want run-1", m["runId"])
		}
		if m["threshold"] != float64(120) {
			t.Errorf("threshold = %v, want 120", m["threshold"])
		}
	})

	t.Run("expired value is a miss", func(t *testing.T) {
		cache := newTestCache(t)
		if err := cache.Set(ctx, "short", "v", time.Millisecond); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		time.Sleep(10 * time.Millisecond)
		if _, err := cache.Get(ctx, "short"); !errors.Is(err, domain.ErrCacheMiss) {
			t.Errorf("Get() error = %v, want ErrCacheMiss", err)
		}
	})

	t.Run("unencodable value is rejected", func(t *testing.T) {
		cache := newTestCache(t)
		if err := cache.Set(ctx, "bad", make(chan int), time.Minute); err == nil {
			t.Error("Set() error = nil, want JSON encoding error")
		}
		if cache.Size() != 0 {
			t.Errorf("Size() = %d, want 0", cache.Size())
		}
	})
}

func TestMemoryCache_Get_CacheMiss(t *testing.T) {
	cache := newTestCache(t)

	_, err := cache.Get(context.Background(), "non-existent-key")
	if !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("Get() error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_DeleteAndExists(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	exists, err := cache.Exists(ctx, "k")
	if err != nil || exists {
		t.Fatalf("Exists() = %v, %v; want false, nil", exists, err)
	}

	if err := cache.Set(ctx, "k", 1, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if exists, _ := cache.Exists(ctx, "k"); !exists {
		t.Error("Exists() = false, want true after Set")
	}

	if err := cache.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if exists, _ := cache.Exists(ctx, "k"); exists {
		t.Error("Exists() = true, want false after Delete")
	}
}

func TestMemoryCache_CleanupSweepsExpired(t *testing.T) {
	cache := NewMemoryCache(5 * time.Millisecond)
	defer cache.Close()
	ctx := context.Background()

	if err := cache.Set(ctx, "gone", "v", time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := cache.Set(ctx, "kept", "v", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for cache.Size() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if size := cache.Size(); size != 1 {
		t.Errorf("Size() = %d, want 1 after sweep", size)
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		if err := cache.Set(ctx, key, key, time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}
	cache.Clear()
	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 after clear", size)
	}
}

func TestMemoryCache_CloseIsIdempotent(t *testing.T) {
	cache := NewMemoryCache(0)
	if err := cache.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := string(rune('a' + id))
			if err := cache.Set(ctx, key, id, time.Minute); err != nil {
				t.Errorf("Concurrent Set() error = %v", err)
			}
			if _, err := cache.Get(ctx, key); err != nil {
				t.Errorf("Concurrent Get() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	if size := cache.Size(); size != 10 {
		t.Errorf("Size() = %d, want 10", size)
	}
}
