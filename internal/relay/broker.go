package relay

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/studyhive/studyhive/internal/logger"
)

// LocalBroker delivers published events to the hub of this process
type LocalBroker struct {
	hub *Hub
}

var _ Publisher = (*LocalBroker)(nil)

// NewLocalBroker creates a single-instance broker
func NewLocalBroker(hub *Hub) *LocalBroker {
	return &LocalBroker{hub: hub}
}

func (b *LocalBroker) Publish(_ context.Context, ev Event) {
	b.hub.Broadcast(ev)
}

const channelPrefix = "studyhive:room:"

func roomChannel(groupID int64) string {
	return channelPrefix + strconv.FormatInt(groupID, 10)
}

// RedisBroker fans events out through Redis pub/sub so every API instance
// delivers them to its own hub.
type RedisBroker struct {
	client *redis.Client
	hub    *Hub
	log    logger.Logger
}

var _ Publisher = (*RedisBroker)(nil)

// NewRedisBroker creates a broker on an existing Redis client
func NewRedisBroker(client *redis.Client, hub *Hub, log logger.Logger) *RedisBroker {
	return &RedisBroker{client: client, hub: hub, log: log}
}

// NewRedisClient parses a redis:// URL, or a plain host:port address
func NewRedisClient(redisURL string) (*redis.Client, error) {
	if !strings.Contains(redisURL, "://") {
		return redis.NewClient(&redis.Options{Addr: redisURL}), nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

func (b *RedisBroker) Publish(ctx context.Context, ev Event) {
	data, err := encodeEvent(ev)
	if err != nil {
		b.log.Error("relay: failed to encode event", err)
		return
	}
	if err := b.client.Publish(ctx, roomChannel(ev.GroupID), data).Err(); err != nil {
		b.log.Error("relay: redis publish failed", err, map[string]interface{}{
			"group_id": ev.GroupID, "type": ev.Type,
		})
	}
}

// Run delivers events from every room channel into the hub until ctx is
// cancelled.
func (b *RedisBroker) Run(ctx context.Context) error {
	pubsub := b.client.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	// wait for the subscription to be confirmed
	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			ev, err := decodeEvent([]byte(msg.Payload))
			if err != nil {
				b.log.Warn("relay: dropping malformed event", err, map[string]interface{}{"channel": msg.Channel})
				continue
			}
			b.hub.Broadcast(ev)
		}
	}
}
