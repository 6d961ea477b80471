package eventlog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/OxBryte/onchain-linktree/config"
	"github.com/OxBryte/onchain-linktree/model"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const schemaVersion = 1

// envelope is the persisted format: a versioned wrapper around the
// event array so the schema can evolve without a flag day.
type envelope struct {
	Version int           `json:"version"`
	Events  []model.Event `json:"events"`
}

// Log is an append-only, capacity-bounded event store persisted as a
// single JSON entry in Redis. Appends never fail loudly: persistence
// problems are logged and the caller proceeds, matching the
// fire-and-forget nature of analytics tracking.
type Log struct {
	redis    *redis.Client
	key      string
	capacity int
	timeout  time.Duration
	now      func() time.Time
	newID    func() string
}

// New creates an event log over the given Redis client.
func New(rdb *redis.Client, cfg config.AnalyticsConfig, opTimeout time.Duration) *Log {
	return &Log{
		redis:    rdb,
		key:      cfg.StorageKey,
		capacity: cfg.Capacity,
		timeout:  opTimeout,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// Append stamps the event with an ID and the current timestamp and
// persists it. When the log would exceed capacity the oldest entries
// are dropped first. Errors are logged, never returned.
func (l *Log) Append(ctx context.Context, e model.Event) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	e.ID = l.newID()
	e.Timestamp = l.now().UnixMilli()

	events := l.load(ctx)
	events = append(events, e)
	if over := len(events) - l.capacity; over > 0 {
		events = events[over:]
	}

	payload, err := json.Marshal(envelope{Version: schemaVersion, Events: events})
	if err != nil {
		log.Error().Err(err).Str("kind", string(e.Kind)).Msg("Failed to encode event log")
		return
	}

	if err := l.redis.Set(ctx, l.key, payload, 0).Err(); err != nil {
		log.Error().Err(err).Str("kind", string(e.Kind)).Msg("Failed to persist event log")
	}
}

// Query returns all events in insertion order, or only those matching
// kind when kind is non-empty. Any read failure yields an empty slice.
func (l *Log) Query(ctx context.Context, kind model.EventKind) []model.Event {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	events := l.load(ctx)
	if kind == "" {
		return events
	}

	filtered := make([]model.Event, 0, len(events))
	for _, e := range events {
		if e.Kind == kind {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// Clear removes the stored log entirely.
func (l *Log) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	return l.redis.Del(ctx, l.key).Err()
}

// load reads the persisted log. A missing key is an empty log; a
// corrupt payload is logged and treated as empty rather than
// propagated, so tracking recovers on the next append.
func (l *Log) load(ctx context.Context) []model.Event {
	raw, err := l.redis.Get(ctx, l.key).Bytes()
	if err == redis.Nil {
		return []model.Event{}
	}
	if err != nil {
		log.Error().Err(err).Str("key", l.key).Msg("Failed to read event log")
		return []model.Event{}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Version > 0 {
		return env.Events
	}

	// Older deployments stored a bare array without the version wrapper.
	var legacy []model.Event
	if err := json.Unmarshal(raw, &legacy); err == nil {
		return legacy
	}

	log.Error().Str("key", l.key).Msg("Corrupt event log payload, treating as empty")
	return []model.Event{}
}
