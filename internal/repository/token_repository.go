package repository

import (
	"context"
	"errors"
	"time"

	"template_hub/internal/storage"
	redisapp "template_hub/internal/storage/redis"

	"github.com/redis/go-redis/v9"
)

type RedisTokenRepo struct {
	Client *redisapp.Client
}

func NewRedisTokenRepo(client *redisapp.Client) *RedisTokenRepo {
	return &RedisTokenRepo{Client: client}
}

func (r *RedisTokenRepo) SaveAccessToken(ctx context.Context, userID, token string, exp time.Duration) error {
	return r.Client.Set(ctx, r.Client.Key("access", userID), token, exp).Err()
}

func (r *RedisTokenRepo) GetAccessToken(ctx context.Context, userID string) (string, error) {
	val, err := r.Client.Get(ctx, r.Client.Key("access", userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", storage.ErrTokenNotFound
	}
	return val, err
}

func (r *RedisTokenRepo) DeleteAccessToken(ctx context.Context, userID string) error {
	return r.Client.Del(ctx, r.Client.Key("access", userID)).Err()
}
