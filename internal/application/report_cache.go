package application

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/priyasp2804/Textile-Defect-Detection/internal/domain/entity"
	"github.com/priyasp2804/Textile-Defect-Detection/pkg/helpers"
)

const listCacheTTL = 5 * time.Minute

// ReportListCache caches a user's report list between reads. All operations
// are best-effort: an error degrades to the repository path, never fails the
// request.
type ReportListCache interface {
	Get(ctx context.Context, ownerID string, dest *[]entity.Report) (bool, error)
	Set(ctx context.Context, ownerID string, reports []entity.Report) error
	Invalidate(ctx context.Context, ownerID string) error
}

func listCacheKey(ownerID string) string {
	return "reports:user:" + ownerID
}

// RedisReportListCache keeps report lists in Redis under a per-owner key with
// a short TTL.
type RedisReportListCache struct {
	rdb *redis.Client
}

func NewRedisReportListCache(rdb *redis.Client) *RedisReportListCache {
	return &RedisReportListCache{rdb: rdb}
}

func (c *RedisReportListCache) Get(ctx context.Context, ownerID string, dest *[]entity.Report) (bool, error) {
	return helpers.RedisGetJSON(ctx, c.rdb, listCacheKey(ownerID), dest)
}

func (c *RedisReportListCache) Set(ctx context.Context, ownerID string, reports []entity.Report) error {
	return helpers.RedisSetJSON(ctx, c.rdb, listCacheKey(ownerID), reports, listCacheTTL)
}

func (c *RedisReportListCache) Invalidate(ctx context.Context, ownerID string) error {
	return helpers.RedisDel(ctx, c.rdb, listCacheKey(ownerID))
}

var _ ReportListCache = (*RedisReportListCache)(nil)
