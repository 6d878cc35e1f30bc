package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Skr3d3/holidaze-project-exam-2/pkg/logger"
	pkgredis "github.com/Skr3d3/holidaze-project-exam-2/pkg/redis"
)

// RedisOptions configure a Redis-backed store
type RedisOptions struct {
	// Prefix is prepended to every key (default "holidaze:")
	Prefix string
	// Channel carries change events between processes (default "holidaze:authchange")
	Channel string
}

type redisBackend struct {
	client *pkgredis.Client
	prefix string
	stop   func() error
}

// changeMessage is published on the channel after every local write
type changeMessage struct {
	Event
	Origin string `json:"origin"`
}

// NewRedisStore creates a Store kept in Redis. Writes are announced on a Pub/Sub
// channel so other processes sharing the keys receive External events.
func NewRedisStore(ctx context.Context, client *pkgredis.Client, opts RedisOptions, log *logger.Logger) (Store, error) {
	if opts.Prefix == "" {
		opts.Prefix = "holidaze:"
	}
	if opts.Channel == "" {
		opts.Channel = "holidaze:authchange"
	}

	ps, err := client.Subscribe(ctx, opts.Channel)
	if err != nil {
		return nil, err
	}

	b := &redisBackend{client: client, prefix: opts.Prefix}
	s := newStore(b, log)
	s.log = s.log.With(zap.String("channel", opts.Channel))

	origin := uuid.NewString()
	s.notify = func(ctx context.Context, e Event) {
		payload, err := json.Marshal(changeMessage{Event: e, Origin: origin})
		if err != nil {
			return
		}
		if err := client.Publish(ctx, opts.Channel, payload).Err(); err != nil {
			s.log.Warn("failed to publish auth change", zap.Error(err))
		}
	}

	lctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ch := ps.Channel()
		for {
			select {
			case <-lctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var cm changeMessage
				if err := json.Unmarshal([]byte(msg.Payload), &cm); err != nil {
					s.log.Warn("ignoring malformed auth change", zap.Error(err))
					continue
				}
				if cm.Origin == origin {
					continue
				}
				cm.Event.Source = External
				s.events.Publish(cm.Event)
			}
		}
	}()

	b.stop = func() error {
		cancel()
		err := ps.Close()
		wg.Wait()
		return err
	}
	return s, nil
}

func (b *redisBackend) key(k string) string {
	return b.prefix + k
}

var allKeys = []string{KeyToken, KeyUser, KeyAPIKey}

func (b *redisBackend) load(ctx context.Context) (map[string]string, error) {
	keys := make([]string, len(allKeys))
	for i, k := range allKeys {
		keys[i] = b.key(k)
	}
	vals, err := b.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read session from redis: %w", err)
	}
	m := make(map[string]string, len(allKeys))
	for i, v := range vals {
		if s, ok := v.(string); ok {
			m[allKeys[i]] = s
		}
	}
	return m, nil
}

func (b *redisBackend) save(ctx context.Context, set map[string]string, del []string) error {
	pipe := b.client.TxPipeline()
	for k, v := range set {
		pipe.Set(ctx, b.key(k), v, 0)
	}
	if len(del) > 0 {
		keys := make([]string, len(del))
		for i, k := range del {
			keys[i] = b.key(k)
		}
		pipe.Del(ctx, keys...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write session to redis: %w", err)
	}
	return nil
}

func (b *redisBackend) close() error {
	if b.stop != nil {
		return b.stop()
	}
	return nil
}
