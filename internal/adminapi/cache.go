package adminapi

import (
	"context"
	"encoding/json"
	"time"

	"admin-backend/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	projectCachePrefix = "adminapi:project:"
	defaultProjectTTL  = 5 * time.Minute
)

// CachedClient caches project reads in Redis. Reload reads skip the cache and refresh it.
type CachedClient struct {
	Next Client
	Rdb  *redis.Client
	TTL  time.Duration
}

func (c *CachedClient) ttl() time.Duration {
	if c.TTL <= 0 {
		return defaultProjectTTL
	}
	return c.TTL
}

func (c *CachedClient) InviteMember(ctx context.Context, projectID string, payload domain.InvitePayload) error {
	return c.Next.InviteMember(ctx, projectID, payload)
}

func (c *CachedClient) SearchAccessPolicies(ctx context.Context, name string) ([]domain.AccessPolicy, error) {
	return c.Next.SearchAccessPolicies(ctx, name)
}

func (c *CachedClient) GetProject(ctx context.Context, projectID string, opts ReadOptions) (*domain.ProjectDetails, error) {
	if c.Rdb == nil {
		return c.Next.GetProject(ctx, projectID, opts)
	}
	key := projectCachePrefix + projectID
	if !opts.Reload {
		b, err := c.Rdb.Get(ctx, key).Bytes()
		if err == nil {
			var cached domain.ProjectDetails
			if err := json.Unmarshal(b, &cached); err == nil {
				return &cached, nil
			}
		} else if err != redis.Nil {
			log.Warn().Err(err).Str("project_id", projectID).Msg("project cache read failed")
		}
	}

	p, err := c.Next.GetProject(ctx, projectID, opts)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(p); err == nil {
		if err := c.Rdb.Set(ctx, key, b, c.ttl()).Err(); err != nil {
			log.Warn().Err(err).Str("project_id", projectID).Msg("project cache write failed")
		}
	}
	return p, nil
}

