package outreach

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// CommandChannel is the Redis channel the delivery worker subscribes to.
// Actual SMTP/WhatsApp mechanics live in that worker, outside this service.
const CommandChannel = "CMD_CONTACT_CANDIDATE"

// RedisDispatcher publishes per-candidate contact commands to Redis for the
// external delivery worker. Publishing is the side effect the orchestrator
// waits on before flipping status: a command that never reached the broker
// means the candidate was never contacted.
type RedisDispatcher struct {
	rdb *redis.Client
}

// NewRedisDispatcher returns a configured RedisDispatcher.
func NewRedisDispatcher(rdb *redis.Client) *RedisDispatcher {
	return &RedisDispatcher{rdb: rdb}
}

var _ ContactDispatcher = (*RedisDispatcher)(nil)

// Send publishes one contact command. A candidate without an address for the
// requested channel fails with invalid_address; broker failures map to
// provider_error.
func (d *RedisDispatcher) Send(ctx context.Context, c *Candidate, channel Channel, template string) error {
	address := c.AddressFor(channel)
	if address == "" {
		return &ChannelError{Reason: ReasonInvalidAddress}
	}

	cmd, _ := json.Marshal(map[string]string{
		"type":        CommandChannel,
		"candidateId": c.ID,
		"roleId":      c.RoleID,
		"channel":     string(channel),
		"address":     address,
		"template":    template,
	})
	if err := d.rdb.Publish(ctx, CommandChannel, cmd).Err(); err != nil {
		return &ChannelError{Reason: ReasonProviderError, Err: err}
	}
	return nil
}
