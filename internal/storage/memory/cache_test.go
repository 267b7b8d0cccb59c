package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"solanalysis/internal/storage"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestCache(maxEntries int) (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	c := NewCache(maxEntries)
	c.now = clock.Now
	return c, clock
}

func TestCache_SetAndGet(t *testing.T) {
	c, _ := newTestCache(0)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("got %q, want %q", got, "v")
	}
}

func TestCache_NotFound(t *testing.T) {
	c, _ := newTestCache(0)

	_, err := c.Get(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCache_Expiry(t *testing.T) {
	c, clock := newTestCache(0)
	ctx := context.Background()

	c.Set(ctx, "short", []byte("1"), 2*time.Second)
	c.Set(ctx, "forever", []byte("2"), 0)

	clock.Advance(1999 * time.Millisecond)
	if _, err := c.Get(ctx, "short"); err != nil {
		t.Fatalf("entry expired early: %v", err)
	}

	clock.Advance(time.Millisecond)
	if _, err := c.Get(ctx, "short"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected expired entry, got %v", err)
	}

	clock.Advance(24 * time.Hour)
	if _, err := c.Get(ctx, "forever"); err != nil {
		t.Errorf("entry without ttl should not expire: %v", err)
	}
}

func TestCache_CopiesValues(t *testing.T) {
	c, _ := newTestCache(0)
	ctx := context.Background()

	value := []byte("abc")
	c.Set(ctx, "k", value, time.Minute)
	value[0] = 'x'

	got, _ := c.Get(ctx, "k")
	got[1] = 'y'

	again, _ := c.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value was mutated: %q", again)
	}
}

func TestCache_Delete(t *testing.T) {
	c, _ := newTestCache(0)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), time.Minute)
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("deleting a missing key should succeed: %v", err)
	}
}

func TestCache_InvalidKey(t *testing.T) {
	c, _ := newTestCache(0)
	if err := c.Set(context.Background(), "", []byte("v"), 0); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCache_MaxEntriesEvictsExpiredFirst(t *testing.T) {
	c, clock := newTestCache(2)
	ctx := context.Background()

	c.Set(ctx, "a", []byte("1"), time.Second)
	c.Set(ctx, "b", []byte("2"), time.Hour)
	clock.Advance(2 * time.Second)

	c.Set(ctx, "c", []byte("3"), time.Hour)

	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}
	if _, err := c.Get(ctx, "b"); err != nil {
		t.Errorf("b should survive: %v", err)
	}
	if _, err := c.Get(ctx, "c"); err != nil {
		t.Errorf("c should be stored: %v", err)
	}
}

func TestCache_MaxEntriesEvictsSoonestExpiry(t *testing.T) {
	c, _ := newTestCache(2)
	ctx := context.Background()

	c.Set(ctx, "long", []byte("1"), time.Hour)
	c.Set(ctx, "short", []byte("2"), time.Minute)
	c.Set(ctx, "new", []byte("3"), time.Hour)

	if _, err := c.Get(ctx, "short"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("entry closest to expiry should be evicted, got %v", err)
	}
	if _, err := c.Get(ctx, "long"); err != nil {
		t.Errorf("long should survive: %v", err)
	}
}

func TestCache_OverwriteAtCapacity(t *testing.T) {
	c, _ := newTestCache(1)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("1"), 0)
	c.Set(ctx, "k", []byte("2"), 0)

	got, err := c.Get(ctx, "k")
	if err != nil || string(got) != "2" {
		t.Errorf("expected overwritten value, got %q, %v", got, err)
	}
}

func TestCache_JSONHelpers(t *testing.T) {
	c, _ := newTestCache(0)
	ctx := context.Background()

	type quote struct {
		Price  float64 `json:"price"`
		Source string  `json:"source"`
	}

	if err := storage.SetJSON(ctx, c, "price:usd", quote{Price: 181.2, Source: "coingecko"}, time.Minute); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}

	var got quote
	if err := storage.GetJSON(ctx, c, "price:usd", &got); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if got.Price != 181.2 || got.Source != "coingecko" {
		t.Errorf("unexpected quote %+v", got)
	}

	c.Set(ctx, "bad", []byte("{"), time.Minute)
	if err := storage.GetJSON(ctx, c, "bad", &got); err == nil {
		t.Error("expected decode error")
	}
}

func TestCache_Concurrent(t *testing.T) {
	c := NewCache(100)
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("k%d", (g*500+i)%150)
				c.Set(ctx, key, []byte("v"), time.Minute)
				c.Get(ctx, key)
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 100 {
		t.Errorf("expected at most 100 entries, got %d", c.Len())
	}
}
