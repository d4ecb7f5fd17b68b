package service

import (
	"context"
	"fmt"
	"strconv"

	"fivesec_bot/internal/models"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

// Redis keeps trades and events as JSON lists and the win/loss tally in a hash.
type Redis struct {
	client redis.Cmdable
	prefix string
}

func NewRedis(client redis.Cmdable, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(name string) string {
	if r.prefix == "" {
		return name
	}
	return r.prefix + ":" + name
}

func (r *Redis) Append(ctx context.Context, rec models.TradeRecord) error {
	data, err := sonic.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redis.Append: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, r.key("trades"), data)
		p.HIncrBy(ctx, r.key("stats"), string(rec.Result), 1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis.Append: %w", err)
	}
	return nil
}

func (r *Redis) AppendEvent(ctx context.Context, ev models.Event) error {
	data, err := sonic.Marshal(ev)
	if err != nil {
		return fmt.Errorf("redis.AppendEvent: %w", err)
	}
	if err := r.client.RPush(ctx, r.key("events"), data).Err(); err != nil {
		return fmt.Errorf("redis.AppendEvent: %w", err)
	}
	return nil
}

func (r *Redis) Stats(ctx context.Context) (models.Stats, error) {
	vals, err := r.client.HGetAll(ctx, r.key("stats")).Result()
	if err != nil {
		return models.Stats{}, fmt.Errorf("redis.Stats: %w", err)
	}
	wins, _ := strconv.Atoi(vals[string(models.Win)])
	losses, _ := strconv.Atoi(vals[string(models.Loss)])
	return models.NewStats(wins, losses), nil
}
