// Package redis publishes run-completed events to a Redis pub/sub channel.
//
// With History set, each event is also pushed onto a capped list
// (<channel>:history) in the same MULTI block, so late subscribers and
// dashboards can read recent runs with Recent.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/nino-chavez/brand-site-sub018/adapter"
)

const (
	DefaultChannel = "runtime-errors:run_completed"
	DefaultTimeout = 5 * time.Second
	DefaultRetries = 3
)

// Config configures the Redis adapter.
type Config struct {
	// URL is redis://[:password@]host:port[/db] or rediss:// for TLS.
	URL     string
	Channel string
	Timeout time.Duration
	Retries int
	// History caps the recent-runs list. Zero disables it.
	History int
	Backoff adapter.Backoff
}

// Adapter publishes run completion events via Redis PUBLISH.
type Adapter struct {
	config Config
	client *goredis.Client
}

// New validates cfg, applies defaults and opens a lazy connection pool.
func New(cfg Config) (*Adapter, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis adapter requires a URL")
	}
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis adapter: invalid URL: %w", err)
	}
	switch {
	case cfg.Retries < 0:
		return nil, fmt.Errorf("retries must be >= 0, got %d", cfg.Retries)
	case cfg.History < 0:
		return nil, fmt.Errorf("history must be >= 0, got %d", cfg.History)
	}
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Adapter{config: cfg, client: goredis.NewClient(opts)}, nil
}

// Publish sends the event as JSON. A closed client is not retried.
func (a *Adapter) Publish(ctx context.Context, event *adapter.RunCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis: marshal event: %w", err)
	}
	return adapter.Retry(ctx, "redis", a.config.Retries, a.config.Backoff, closed, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
		return a.send(ctx, body)
	})
}

func (a *Adapter) send(ctx context.Context, body []byte) error {
	if a.config.History == 0 {
		return a.client.Publish(ctx, a.config.Channel, body).Err()
	}
	key := a.HistoryKey()
	_, err := a.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Publish(ctx, a.config.Channel, body)
		p.LPush(ctx, key, body)
		p.LTrim(ctx, key, 0, int64(a.config.History-1))
		return nil
	})
	return err
}

func closed(err error) bool { return errors.Is(err, goredis.ErrClosed) }

// HistoryKey is the list holding the most recent events.
func (a *Adapter) HistoryKey() string {
	return a.config.Channel + ":history"
}

// Recent returns up to n stored events, newest first. Entries that no
// longer decode are skipped. n <= 0 returns the whole list.
func (a *Adapter) Recent(ctx context.Context, n int) ([]adapter.RunCompletedEvent, error) {
	stop := int64(n - 1)
	if n <= 0 {
		stop = -1
	}
	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	raw, err := a.client.LRange(ctx, a.HistoryKey(), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: read %s: %w", a.HistoryKey(), err)
	}
	events := make([]adapter.RunCompletedEvent, 0, len(raw))
	for _, s := range raw {
		var ev adapter.RunCompletedEvent
		if json.Unmarshal([]byte(s), &ev) != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// Close releases the connection pool.
func (a *Adapter) Close() error {
	return a.client.Close()
}

var _ adapter.Adapter = (*Adapter)(nil)
