// Package events publishes interaction events (likes, unlikes, comments)
// for other processes to consume.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/lazypower/memoria/internal/config"
)

// Type names an interaction.
type Type string

const (
	Like    Type = "like"
	Unlike  Type = "unlike"
	Comment Type = "comment"
)

// Event is one interaction on a memory.
type Event struct {
	Type      Type      `json:"type"`
	UserID    string    `json:"user_id"`
	MemoryID  string    `json:"memory_id"`
	CommentID string    `json:"comment_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Key identifies the (user, memory, type) triple an event is about.
func (e Event) Key() string {
	return fmt.Sprintf("%s:%s:%s", e.UserID, e.MemoryID, e.Type)
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// New returns a Redis publisher when cfg.Addr is set, else Nop.
func New(cfg config.RedisConfig) Publisher {
	if cfg.Addr == "" {
		return Nop{}
	}
	return NewRedisPublisher(redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}), cfg.Channel)
}

// RedisPublisher publishes JSON events on a Redis pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", e.Key(), err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Recorder keeps published events in memory. Useful in tests and dry runs.
type Recorder struct {
	mu     sync.Mutex
	Err    error
	events []Event
}

func (r *Recorder) Publish(ctx context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
