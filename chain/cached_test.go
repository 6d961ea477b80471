package chain

import (
	"context"
	"testing"
	"time"

	"github.com/OxBryte/onchain-linktree/config"
	"github.com/OxBryte/onchain-linktree/model"
)

// countingReader counts how many reads reach the underlying gateway.
type countingReader struct {
	detailHits   int
	allUsersHits int
}

func (c *countingReader) GetAllUsers(ctx context.Context) ([]string, error) {
	c.allUsersHits++
	return []string{"0xA"}, nil
}

func (c *countingReader) GetUserDetails(ctx context.Context, address string) (model.User, error) {
	c.detailHits++
	return model.User{Address: address, Username: "alice", Exists: true}, nil
}

func (c *countingReader) GetMyDetails(ctx context.Context, caller string) (model.User, error) {
	return model.User{}, nil
}

func (c *countingReader) GetUserDataArray(ctx context.Context, address string) ([]model.Link, error) {
	return nil, nil
}

func (c *countingReader) GetMyDataArray(ctx context.Context, caller string) ([]model.Link, error) {
	return nil, nil
}

func (c *countingReader) UserExists(ctx context.Context, address string) (bool, error) {
	return true, nil
}

func newTestCache(t *testing.T, inner Reader) *CachedReader {
	t.Helper()

	cached, err := NewCachedReader(inner, config.CacheConfig{
		Enabled:     true,
		MaxSizeMB:   10,
		TTLSeconds:  60,
		CounterSize: 1000,
	})
	if err != nil {
		t.Fatalf("Failed to create cached reader: %v", err)
	}
	t.Cleanup(cached.Close)

	return cached
}

func TestCachedReader_DetailsCached(t *testing.T) {
	inner := &countingReader{}
	cached := newTestCache(t, inner)
	ctx := context.Background()

	if _, err := cached.GetUserDetails(ctx, "0xA"); err != nil {
		t.Fatalf("First read failed: %v", err)
	}

	// Ristretto sets are async
	time.Sleep(10 * time.Millisecond)

	if _, err := cached.GetUserDetails(ctx, "0xA"); err != nil {
		t.Fatalf("Second read failed: %v", err)
	}

	if inner.detailHits != 1 {
		t.Errorf("Expected one underlying detail read, got %d", inner.detailHits)
	}
}

func TestCachedReader_InvalidateUsers(t *testing.T) {
	inner := &countingReader{}
	cached := newTestCache(t, inner)
	ctx := context.Background()

	if _, err := cached.GetAllUsers(ctx); err != nil {
		t.Fatalf("First read failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	cached.InvalidateUsers()
	time.Sleep(10 * time.Millisecond)

	if _, err := cached.GetAllUsers(ctx); err != nil {
		t.Fatalf("Second read failed: %v", err)
	}
	if inner.allUsersHits != 2 {
		t.Errorf("Expected invalidation to force a re-read, got %d hits", inner.allUsersHits)
	}
}

func TestCachedReader_MetricsShape(t *testing.T) {
	inner := &countingReader{}
	cached := newTestCache(t, inner)

	metrics := cached.Metrics()
	if metrics.TTLSeconds != 60 {
		t.Errorf("Expected TTL 60 seconds, got %d", metrics.TTLSeconds)
	}
}
