package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/servicenest/helpdesk/internal/domain"
)

// DashboardCache caches org overview payloads in Redis. Each organization
// carries a version counter; invalidation bumps the counter so stale
// payloads simply fall out of reach and expire.
type DashboardCache struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewDashboardCache constructs the cache. A nil client disables caching.
func NewDashboardCache(client *redis.Client, logger *zap.Logger, ttl time.Duration) *DashboardCache {
	return &DashboardCache{client: client, logger: logger, ttl: ttl}
}

// Get returns the cached overview for the org and range, if present.
func (c *DashboardCache) Get(ctx context.Context, orgID string, rangeDays int) (*domain.DashboardOverview, bool) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return nil, false
	}
	raw, err := c.client.Get(ctx, c.key(ctx, orgID, rangeDays)).Bytes()
	if err != nil {
		return nil, false
	}
	var overview domain.DashboardOverview
	if err := json.Unmarshal(raw, &overview); err != nil {
		c.logger.Warn("dashboard cache payload corrupt", zap.String("organization_id", orgID), zap.Error(err))
		return nil, false
	}
	return &overview, true
}

// Set stores the overview under the org's current version.
func (c *DashboardCache) Set(ctx context.Context, orgID string, rangeDays int, overview *domain.DashboardOverview) {
	if c == nil || c.client == nil || c.ttl <= 0 || overview == nil {
		return
	}
	raw, err := json.Marshal(overview)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(ctx, orgID, rangeDays), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("dashboard cache write failed", zap.String("organization_id", orgID), zap.Error(err))
	}
}

// Invalidate bumps the org's version counter, orphaning every cached range.
func (c *DashboardCache) Invalidate(ctx context.Context, orgID string) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return
	}
	if err := c.client.Incr(ctx, versionKey(orgID)).Err(); err != nil {
		c.logger.Warn("dashboard cache invalidation failed", zap.String("organization_id", orgID), zap.Error(err))
	}
}

func (c *DashboardCache) key(ctx context.Context, orgID string, rangeDays int) string {
	version, err := c.client.Get(ctx, versionKey(orgID)).Int64()
	if err != nil {
		version = 0
	}
	return fmt.Sprintf("dashboard:overview:%s:v%d:%dd", orgID, version, rangeDays)
}

func versionKey(orgID string) string {
	return "dashboard:version:" + orgID
}
