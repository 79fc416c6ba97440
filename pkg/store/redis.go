package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis keeps the session in Redis so several operator machines (or a jump
// host and a laptop) can share one login.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis returns a Redis store. Keys are namespaced with prefix, e.g.
// "backstage:alice:".
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

// NewRedisClient builds a client and verifies the connection.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("store: redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

func (r *Redis) Load(ctx context.Context) (Session, error) {
	vals, err := r.client.MGet(ctx, r.key(KeyToken), r.key(KeyRefreshToken), r.key(KeyUser)).Result()
	if err != nil {
		return Session{}, fmt.Errorf("store: redis load: %w", err)
	}
	str := func(v any) string {
		s, _ := v.(string)
		return s
	}
	s := Session{Token: str(vals[0]), RefreshToken: str(vals[1])}
	if raw := str(vals[2]); raw != "" {
		u := &User{}
		if err := json.Unmarshal([]byte(raw), u); err != nil {
			return Session{}, fmt.Errorf("store: decode user: %w", err)
		}
		s.User = u
	}
	return s, nil
}

func (r *Redis) SetTokens(ctx context.Context, access, refresh string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(KeyToken), access, 0)
		if refresh != "" {
			pipe.Set(ctx, r.key(KeyRefreshToken), refresh, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: redis set tokens: %w", err)
	}
	return nil
}

func (r *Redis) SetUser(ctx context.Context, u *User) error {
	if u == nil {
		return r.client.Del(ctx, r.key(KeyUser)).Err()
	}
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(KeyUser), data, 0).Err(); err != nil {
		return fmt.Errorf("store: redis set user: %w", err)
	}
	return nil
}

// Clear deletes all three keys in a single DEL.
func (r *Redis) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key(KeyToken), r.key(KeyRefreshToken), r.key(KeyUser)).Err(); err != nil {
		return fmt.Errorf("store: redis clear: %w", err)
	}
	return nil
}
