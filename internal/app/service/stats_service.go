package service

import (
	"context"
	"time"

	"github.com/coderr-app/coderr-backend/internal/app/repository"
	"github.com/coderr-app/coderr-backend/pkg/logger"
	"github.com/coderr-app/coderr-backend/pkg/redis"
)

const statsCacheKey = "coderr:base_info"

// BaseInfo is the platform-wide stats payload. AverageRating falls back to
// 0.0 with no reviews, unlike the "-" used in profile payloads.
type BaseInfo struct {
	OfferCount           int64   `json:"offer_count"`
	ReviewCount          int64   `json:"review_count"`
	BusinessProfileCount int64   `json:"business_profile_count"`
	AverageRating        float64 `json:"average_rating"`
}

type StatsService interface {
	BaseInfo(ctx context.Context) (*BaseInfo, error)
	Refresh(ctx context.Context) (*BaseInfo, error)
}

type statsService struct {
	offerRepo    repository.OfferRepository
	reviewRepo   repository.ReviewRepository
	profileRepo  repository.ProfileRepository
	cacheEnabled bool
	cacheTTL     time.Duration
}

func NewStatsService(
	offerRepo repository.OfferRepository,
	reviewRepo repository.ReviewRepository,
	profileRepo repository.ProfileRepository,
	cacheEnabled bool,
	cacheTTL time.Duration,
) StatsService {
	return &statsService{
		offerRepo:    offerRepo,
		reviewRepo:   reviewRepo,
		profileRepo:  profileRepo,
		cacheEnabled: cacheEnabled,
		cacheTTL:     cacheTTL,
	}
}

// BaseInfo serves the stats from cache when possible and recomputes on a
// miss. A cache failure degrades to a direct computation, never an error.
func (s *statsService) BaseInfo(ctx context.Context) (*BaseInfo, error) {
	if s.cacheEnabled {
		var cached BaseInfo
		hit, err := redis.GetJSON(ctx, statsCacheKey, &cached)
		if err != nil {
			logger.Warn("Stats cache read failed, recomputing", map[string]interface{}{
				"error": err.Error(),
			})
		} else if hit {
			logger.Debug("Serving platform stats from cache", nil)
			return &cached, nil
		}
	}

	return s.Refresh(ctx)
}

// Refresh recomputes the platform stats and rewrites the cache entry.
func (s *statsService) Refresh(ctx context.Context) (*BaseInfo, error) {
	offerCount, err := s.offerRepo.Count()
	if err != nil {
		return nil, err
	}
	reviewCount, err := s.reviewRepo.Count()
	if err != nil {
		return nil, err
	}
	businessCount, err := s.profileRepo.CountBusiness()
	if err != nil {
		return nil, err
	}
	avg, err := s.reviewRepo.AverageRating()
	if err != nil {
		return nil, err
	}

	averageRating := 0.0
	if avg != nil {
		averageRating = RoundRating(*avg)
	}

	info := &BaseInfo{
		OfferCount:           offerCount,
		ReviewCount:          reviewCount,
		BusinessProfileCount: businessCount,
		AverageRating:        averageRating,
	}

	if s.cacheEnabled {
		if err := redis.SetJSON(ctx, statsCacheKey, info, s.cacheTTL); err != nil {
			logger.Warn("Stats cache write failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	logger.Debug("Platform stats recomputed", map[string]interface{}{
		"offer_count":            info.OfferCount,
		"review_count":           info.ReviewCount,
		"business_profile_count": info.BusinessProfileCount,
	})

	return info, nil
}
