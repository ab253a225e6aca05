package repository

import (
	"context"
	"time"

	"template_hub/internal/storage"

	"github.com/patrickmn/go-cache"
)

// CacheTokenRepo хранит токен в памяти процесса, когда Redis не настроен
type CacheTokenRepo struct {
	c *cache.Cache
}

func NewCacheTokenRepo() *CacheTokenRepo {
	return &CacheTokenRepo{c: cache.New(cache.NoExpiration, 10*time.Minute)}
}

func (r *CacheTokenRepo) SaveAccessToken(_ context.Context, userID, token string, exp time.Duration) error {
	if exp <= 0 {
		exp = cache.NoExpiration
	}
	r.c.Set(userID, token, exp)
	return nil
}

func (r *CacheTokenRepo) GetAccessToken(_ context.Context, userID string) (string, error) {
	v, ok := r.c.Get(userID)
	if !ok {
		return "", storage.ErrTokenNotFound
	}
	return v.(string), nil
}

func (r *CacheTokenRepo) DeleteAccessToken(_ context.Context, userID string) error {
	r.c.Delete(userID)
	return nil
}
