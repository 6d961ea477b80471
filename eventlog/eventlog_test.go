package eventlog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/OxBryte/onchain-linktree/config"
	"github.com/OxBryte/onchain-linktree/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func setupTestLog(t *testing.T, capacity int) (*Log, *miniredis.Miniredis) {
	t.Helper()

	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(s.Close)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	log := New(client, config.AnalyticsConfig{
		StorageKey: "analytics:events",
		Capacity:   capacity,
	}, 5*time.Second)

	// Deterministic ids and timestamps
	counter := 0
	log.newID = func() string {
		counter++
		return fmt.Sprintf("id-%d", counter)
	}
	base := time.UnixMilli(1700000000000)
	log.now = func() time.Time {
		counter++
		return base.Add(time.Duration(counter) * time.Millisecond)
	}

	return log, s
}

func TestAppendPreservesInsertionOrder(t *testing.T) {
	log, _ := setupTestLog(t, 100)
	ctx := context.Background()

	usernames := []string{"alice", "bob", "carol"}
	for _, u := range usernames {
		log.Append(ctx, model.NewProfileView(u))
	}

	events := log.Query(ctx, "")
	if len(events) != len(usernames) {
		t.Fatalf("Expected %d events, got %d", len(usernames), len(events))
	}
	for i, u := range usernames {
		if events[i].Username != u {
			t.Errorf("Event %d: expected username %q, got %q", i, u, events[i].Username)
		}
	}
}

func TestAppendStampsIDAndTimestamp(t *testing.T) {
	log, _ := setupTestLog(t, 10)
	ctx := context.Background()

	log.Append(ctx, model.NewLinkClick("alice", "twitter", "https://x.com/a"))

	events := log.Query(ctx, "")
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].ID == "" {
		t.Error("Expected a non-empty event ID")
	}
	if events[0].Timestamp == 0 {
		t.Error("Expected a non-zero timestamp")
	}
}

func TestCapacityEvictsOldestFirst(t *testing.T) {
	log, _ := setupTestLog(t, 5)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		log.Append(ctx, model.NewProfileView(fmt.Sprintf("user-%d", i)))
	}

	events := log.Query(ctx, "")
	if len(events) != 5 {
		t.Fatalf("Expected log capped at 5, got %d", len(events))
	}
	if events[0].Username != "user-1" {
		t.Errorf("Expected oldest event evicted, first is %q", events[0].Username)
	}
	if events[4].Username != "user-5" {
		t.Errorf("Expected newest event kept, last is %q", events[4].Username)
	}
}

func TestQueryKindFilter(t *testing.T) {
	log, _ := setupTestLog(t, 100)
	ctx := context.Background()

	log.Append(ctx, model.NewProfileView("alice"))
	log.Append(ctx, model.NewLinkClick("alice", "twitter", "https://x.com/a"))
	log.Append(ctx, model.NewProfileView("bob"))

	views := log.Query(ctx, model.KindProfileView)
	if len(views) != 2 {
		t.Fatalf("Expected 2 profile views, got %d", len(views))
	}
	clicks := log.Query(ctx, model.KindLinkClick)
	if len(clicks) != 1 {
		t.Fatalf("Expected 1 link click, got %d", len(clicks))
	}
}

func TestCorruptPayloadTreatedAsEmpty(t *testing.T) {
	log, s := setupTestLog(t, 10)
	ctx := context.Background()

	s.Set("analytics:events", "{not json")

	if events := log.Query(ctx, ""); len(events) != 0 {
		t.Fatalf("Expected empty log for corrupt payload, got %d events", len(events))
	}

	// Tracking recovers on the next append.
	log.Append(ctx, model.NewProfileView("alice"))
	if events := log.Query(ctx, ""); len(events) != 1 {
		t.Fatalf("Expected 1 event after recovery, got %d", len(events))
	}
}

func TestLegacyUnversionedPayloadStillReadable(t *testing.T) {
	log, s := setupTestLog(t, 10)
	ctx := context.Background()

	s.Set("analytics:events", `[{"id":"old-1","kind":"profile_view","username":"alice","timestamp":1700000000000}]`)

	events := log.Query(ctx, "")
	if len(events) != 1 {
		t.Fatalf("Expected 1 legacy event, got %d", len(events))
	}
	if events[0].Username != "alice" {
		t.Errorf("Expected legacy event for alice, got %q", events[0].Username)
	}
}

func TestAppendFailsSilentlyWhenRedisDown(t *testing.T) {
	log, s := setupTestLog(t, 10)
	ctx := context.Background()

	s.Close()

	// Must not panic and must not surface an error to the caller.
	log.Append(ctx, model.NewProfileView("alice"))

	if events := log.Query(ctx, ""); len(events) != 0 {
		t.Fatalf("Expected empty result on read failure, got %d events", len(events))
	}
}

func TestClear(t *testing.T) {
	log, _ := setupTestLog(t, 10)
	ctx := context.Background()

	log.Append(ctx, model.NewProfileView("alice"))
	if err := log.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if events := log.Query(ctx, ""); len(events) != 0 {
		t.Fatalf("Expected empty log after clear, got %d events", len(events))
	}
}
