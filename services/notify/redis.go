package notifysvc

import (
	"context"
	"encoding/json"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/levelup/core/xp"
)

// Publisher is the subset of the redis client used to publish events.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Message is the envelope published on the events channel.
type Message struct {
	Type string          `json:"type"`
	Data xp.LevelUpEvent `json:"data"`
}

const levelUpType = "level_up"

type redisNotifier struct {
	client  Publisher
	channel string
}

var _ xp.Notifier = (*redisNotifier)(nil)

// NewRedisNotifier publishes level-up events as JSON on a redis pub/sub channel.
func NewRedisNotifier(client Publisher, channel string) *redisNotifier {
	vala.BeginValidation().Validate(
		vala.IsNotNil(client, "client"),
		vala.StringNotEmpty(channel, "channel"),
	).CheckAndPanic()

	return &redisNotifier{client: client, channel: channel}
}

func (n *redisNotifier) NotifyLevelUp(ctx context.Context, evt xp.LevelUpEvent) error {
	payload, err := json.Marshal(Message{Type: levelUpType, Data: evt})
	if err != nil {
		return errors.Wrap(err, "marshalling event")
	}
	if err = n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return errors.Wrapf(err, "publishing to %q", n.channel)
	}
	return nil
}
