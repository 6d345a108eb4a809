package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/azzamfsta/Pharmacy-Management-System/domain"
)

var ErrCacheMiss = errors.New("cache miss")

const catalogKey = "pharmgate:catalog:sellable"

// Catalog caches the sellable medicine list used to open POS sessions.
type Catalog interface {
	Get(ctx context.Context) ([]domain.Medicine, error)
	Set(ctx context.Context, medicines []domain.Medicine) error
	Invalidate(ctx context.Context) error
}

type RedisCatalog struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCatalog(client *redis.Client, ttl time.Duration) *RedisCatalog {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisCatalog{client: client, ttl: ttl}
}

func (r *RedisCatalog) Get(ctx context.Context) ([]domain.Medicine, error) {
	data, err := r.client.Get(ctx, catalogKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var medicines []domain.Medicine
	if err := json.Unmarshal(data, &medicines); err != nil {
		return nil, fmt.Errorf("unmarshal catalog failed: %w", err)
	}
	return medicines, nil
}

func (r *RedisCatalog) Set(ctx context.Context, medicines []domain.Medicine) error {
	data, err := json.Marshal(medicines)
	if err != nil {
		return fmt.Errorf("marshal catalog failed: %w", err)
	}
	if err := r.client.Set(ctx, catalogKey, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCatalog) Invalidate(ctx context.Context) error {
	if err := r.client.Del(ctx, catalogKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// Noop is used when no Redis address is configured; every Get misses.
type Noop struct{}

func (Noop) Get(context.Context) ([]domain.Medicine, error) { return nil, ErrCacheMiss }
func (Noop) Set(context.Context, []domain.Medicine) error { return nil }
func (Noop) Invalidate(context.Context) error { return nil }
