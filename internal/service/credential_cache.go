package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const credentialCacheKeyPrefix = "credential:live:"

// CredentialCache keeps the serialized live credential per user so repeated
// downloads of a patient's credential skip the database. Best-effort: the
// database row is the source of truth and every cache failure degrades to a
// DB read.
type CredentialCache interface {
	Put(ctx context.Context, userID uuid.UUID, payload string, ttl time.Duration)
	Get(ctx context.Context, userID uuid.UUID) (string, bool)
	Invalidate(ctx context.Context, userID uuid.UUID)
}

type redisCredentialCache struct {
	client *redis.Client
	log    *logrus.Logger
}

func NewCredentialCache(client *redis.Client, log *logrus.Logger) CredentialCache {
	return &redisCredentialCache{
		client: client,
		log:    log,
	}
}

func credentialCacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("%s%s", credentialCacheKeyPrefix, userID)
}

func (c *redisCredentialCache) Put(ctx context.Context, userID uuid.UUID, payload string, ttl time.Duration) {
	if err := c.client.Set(ctx, credentialCacheKey(userID), payload, ttl).Err(); err != nil {
		c.log.Warnf("Failed to cache credential for user %s (non-fatal): %+v", userID, err)
	}
}

func (c *redisCredentialCache) Get(ctx context.Context, userID uuid.UUID) (string, bool) {
	payload, err := c.client.Get(ctx, credentialCacheKey(userID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Warnf("Failed to read credential cache for user %s (non-fatal): %+v", userID, err)
		}
		return "", false
	}
	return payload, true
}

func (c *redisCredentialCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if err := c.client.Del(ctx, credentialCacheKey(userID)).Err(); err != nil {
		c.log.Warnf("Failed to invalidate credential cache for user %s (non-fatal): %+v", userID, err)
	}
}
