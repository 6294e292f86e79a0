package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/artemk/movebid/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	principalKeyPrefix = "principal:"
	principalTTL       = 60 * time.Second
)

// PrincipalCache keeps recently authenticated users for a short TTL so each
// request does not re-hit the user store. Contract and offer state is never
// cached; every lifecycle operation re-reads current status.
type PrincipalCache interface {
	Get(ctx context.Context, token string) (*models.User, error)
	Set(ctx context.Context, token string, user *models.User) error
	Invalidate(ctx context.Context, token string) error
}

type principalCache struct {
	redis *redis.Client
}

func NewPrincipalCache(redisClient *redis.Client) PrincipalCache {
	return &principalCache{redis: redisClient}
}

func principalKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return principalKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *principalCache) Get(ctx context.Context, token string) (*models.User, error) {
	data, err := c.redis.Get(ctx, principalKey(token)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *principalCache) Set(ctx context.Context, token string, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, principalKey(token), data, principalTTL).Err()
}

func (c *principalCache) Invalidate(ctx context.Context, token string) error {
	return c.redis.Del(ctx, principalKey(token)).Err()
}
