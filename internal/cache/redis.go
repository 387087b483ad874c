package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"eventtickets/config"
	"eventtickets/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache keeps the per-event ticket-type catalog close to the handlers.
// Counters read from here are advisory only; the authoritative availability
// check always happens against the ledger at commit time.
type RedisCache struct {
	client     *redis.Client
	catalogTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, catalogTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		catalogTTL: catalogTTL,
	}
}

func (c *RedisCache) GetTicketTypes(ctx context.Context, eventID int64) ([]domain.TicketType, error) {
	data, err := c.client.Get(ctx, catalogKey(eventID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var types []domain.TicketType
	if err := json.Unmarshal(data, &types); err != nil {
		return nil, err
	}
	return types, nil
}

func (c *RedisCache) SetTicketTypes(ctx context.Context, eventID int64, types []domain.TicketType) error {
	payload, err := json.Marshal(types)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, catalogKey(eventID), payload, c.catalogTTL).Err()
}

// InvalidateTicketTypes drops the cached catalog for an event after a
// booking or cancellation commits, so stale counts live at most until the
// next read.
func (c *RedisCache) InvalidateTicketTypes(ctx context.Context, eventID int64) error {
	return c.client.Del(ctx, catalogKey(eventID)).Err()
}

func catalogKey(eventID int64) string {
	return fmt.Sprintf("cache:ticket_types:%d", eventID)
}
