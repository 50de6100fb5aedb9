package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/providers"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
)

const (
	warmedDoctorTTL = 300
	warmPageCount   = 3
)

// CacheWarmingService preloads the doctor directory. Lists are read through
// the cached repository so its list keys are populated; single doctor
// entries are written directly.
type CacheWarmingService struct {
	doctorRepo repositories.DoctorRepository
	cache      providers.CacheProvider
}

// NewCacheWarmingService creates a new cache warming service. doctorRepo
// should be the cache-backed repository.
func NewCacheWarmingService(doctorRepo repositories.DoctorRepository, cache providers.CacheProvider) *CacheWarmingService {
	return &CacheWarmingService{
		doctorRepo: doctorRepo,
		cache:      cache,
	}
}

// WarmCache loads the first pages of the doctor list and caches every
// doctor on them. It returns the number of doctors cached.
func (s *CacheWarmingService) WarmCache(ctx context.Context) (int, error) {
	warmed := 0
	for page := 0; page < warmPageCount; page++ {
		doctors, err := s.doctorRepo.List(ctx, repositories.DoctorFilter{
			Pagination: repositories.Pagination{
				Limit:  repositories.DefaultPageSize,
				Offset: page * repositories.DefaultPageSize,
			},
		})
		if err != nil {
			return warmed, fmt.Errorf("failed to fetch doctors page %d: %w", page, err)
		}

		for _, doctor := range doctors {
			data, err := json.Marshal(doctor)
			if err != nil {
				log.Warn().Err(err).Int64("doctor_id", doctor.ID).Msg("failed to marshal doctor")
				continue
			}
			if err := s.cache.Set(ctx, providers.DoctorCacheKey(doctor.ID), data, warmedDoctorTTL); err != nil {
				return warmed, fmt.Errorf("failed to cache doctor %d: %w", doctor.ID, err)
			}
			warmed++
		}

		if len(doctors) < repositories.DefaultPageSize {
			break
		}
	}

	log.Info().Int("doctors", warmed).Msg("doctor cache warmed")
	return warmed, nil
}

// StartPeriodicWarming warms once, then again on every tick until ctx is done
func (s *CacheWarmingService) StartPeriodicWarming(ctx context.Context, interval time.Duration) {
	if _, err := s.WarmCache(ctx); err != nil {
		log.Warn().Err(err).Msg("initial cache warming failed")
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("stopping cache warming")
				return
			case <-ticker.C:
				if _, err := s.WarmCache(ctx); err != nil {
					log.Warn().Err(err).Msg("periodic cache warming failed")
				}
			}
		}
	}()
	log.Info().Dur("interval", interval).Msg("periodic cache warming started")
}
