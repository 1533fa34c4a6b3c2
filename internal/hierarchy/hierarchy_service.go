package hierarchy

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"go-orgflow/internal/employee"
)

const OrgChartKeyPrefix = "orgchart:"

func GetOrgChartKey(companyID string) string {
	return OrgChartKeyPrefix + companyID
}

const orgChartCacheTTL = 1 * time.Hour

//go:generate mockgen -source=hierarchy_service.go -destination=mock/hierarchy_service_mock.go -package=mock
type Service interface {
	GetOrgChart(ctx context.Context, companyID string) (OrgChartResponse, error)
	GetStats(ctx context.Context, companyID string) (OrgStats, error)
	InvalidateCache(ctx context.Context, companyID string)
}

type service struct {
	repo   employee.Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(repo employee.Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("hierarchy.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("hierarchy.service")
	}
	return &service{
		repo:   repo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) GetOrgChart(ctx context.Context, companyID string) (OrgChartResponse, error) {
	cacheKey := GetOrgChartKey(companyID)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp OrgChartResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	// Singleflight: an org chart fan-out (dashboard loads) must not turn
	// into N identical tenant-wide scans.
	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		empls, err := s.repo.FindAllByCompany(ctx, companyID)
		if err != nil {
			s.logger.Error("load employees for org chart failed",
				zap.String("company_id", companyID),
				zap.Error(err),
			)
			return nil, employee.MapRepositoryError(err)
		}

		result := Build(empls)
		if result.CycleDetected {
			s.logger.Warn("manager chain cycle detected, rendered with fallback roots",
				zap.String("company_id", companyID),
			)
		}

		resp := OrgChartResponse{
			Forest:     result.Forest,
			Unassigned: result.Unassigned,
			Stats:      result.Stats,
		}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, cacheKey, jsonData, orgChartCacheTTL)
			}
		}

		return resp, nil
	})
	if err != nil {
		return OrgChartResponse{}, err
	}

	return v.(OrgChartResponse), nil
}

func (s *service) GetStats(ctx context.Context, companyID string) (OrgStats, error) {
	resp, err := s.GetOrgChart(ctx, companyID)
	if err != nil {
		return OrgStats{}, err
	}
	return resp.Stats, nil
}

// InvalidateCache drops the rendered tree after a hierarchy mutation
// (accepted team join, completed exit). Best effort: a stale cache entry
// expires on its own TTL.
func (s *service) InvalidateCache(ctx context.Context, companyID string) {
	if s.rdb == nil {
		return
	}
	cacheKey := GetOrgChartKey(companyID)
	if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate org chart cache",
			zap.Error(err),
			zap.String("key", cacheKey),
		)
	}
}
