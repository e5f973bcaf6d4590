// Package broadcast shares cache invalidations between console replicas over
// a Redis pub/sub channel.
package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"adminconsole/internal/engine/cache"
	"adminconsole/internal/pkg/logger"
	"adminconsole/internal/platform/config"
)

// Message is the payload published for one successful write.
type Message struct {
	Origin    string   `json:"origin"`
	Tags      []string `json:"tags"`
	Signature string   `json:"signature,omitempty"`
}

// Applier applies invalidations received from other replicas.
type Applier interface {
	ApplyRemote(tags []cache.Tag) []cache.Key
}

type Broadcaster struct {
	client  *redis.Client
	channel string
	secret  string
	origin  string
	log     zerolog.Logger
}

func New(cfg config.BroadcastConfig) (*Broadcaster, error) {
	addr := strings.TrimPrefix(strings.TrimPrefix(cfg.RedisAddr, "redis://"), "rediss://")
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	return newBroadcaster(client, cfg.Channel, cfg.Secret), nil
}

func newBroadcaster(client *redis.Client, channel, secret string) *Broadcaster {
	return &Broadcaster{
		client:  client,
		channel: channel,
		secret:  secret,
		origin:  uuid.NewString(),
		log:     logger.Component("broadcast"),
	}
}

func (b *Broadcaster) encode(tags []cache.Tag) ([]byte, error) {
	msg := Message{Origin: b.origin, Tags: make([]string, len(tags))}
	for i, t := range tags {
		msg.Tags[i] = t.String()
	}
	if b.secret != "" {
		msg.Signature = Sign(b.secret, signingPayload(msg))
	}
	return json.Marshal(msg)
}

// Publish sends tags to the other replicas.
func (b *Broadcaster) Publish(ctx context.Context, tags []cache.Tag) error {
	payload, err := b.encode(tags)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

// handle applies one received payload. Messages this replica published,
// malformed payloads and bad signatures are ignored.
func (b *Broadcaster) handle(payload string, applier Applier) bool {
	var msg Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		b.log.Warn().Err(err).Msg("dropping malformed invalidation message")
		return false
	}
	if msg.Origin == b.origin || len(msg.Tags) == 0 {
		return false
	}
	if !Verify(b.secret, msg) {
		b.log.Warn().Str("origin", msg.Origin).Msg("dropping invalidation with bad signature")
		return false
	}

	tags := make([]cache.Tag, len(msg.Tags))
	for i, s := range msg.Tags {
		tags[i] = cache.ParseTag(s)
	}
	keys := applier.ApplyRemote(tags)
	b.log.Debug().Str("origin", msg.Origin).Strs("tags", msg.Tags).Int("keys", len(keys)).Msg("applied remote invalidation")
	return true
}

// Run applies invalidations from other replicas until ctx is done.
func (b *Broadcaster) Run(ctx context.Context, applier Applier) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	b.log.Info().Str("channel", b.channel).Msg("listening for invalidations")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.handle(msg.Payload, applier)
		}
	}
}

func (b *Broadcaster) Close() error {
	return b.client.Close()
}

func (b *Broadcaster) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}
