package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/providers"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/infrastructure/observability"
)

// Cache TTLs (in seconds)
const (
	doctorByIDTTL   = 300 // 5 minutes for single doctor
	doctorsListTTL  = 180 // 3 minutes for lists
	doctorCacheName = "doctor"
)

func doctorsListCacheKey(filter repositories.DoctorFilter) string {
	page := filter.Pagination.Normalize()
	speciality := "all"
	if filter.SpecialityID != nil {
		speciality = fmt.Sprintf("%d", *filter.SpecialityID)
	}
	return fmt.Sprintf("doctors:list:%s:%t:%d:%d", speciality, filter.AvailableOnly, page.Limit, page.Offset)
}

// CachedDoctorAdapter wraps a DoctorRepository with Redis read-through caching.
// Writes go straight to the wrapped repository; invalidation is driven by
// doctor_updated events.
type CachedDoctorAdapter struct {
	adapter repositories.DoctorRepository
	cache   providers.CacheProvider
	metrics *observability.Metrics
}

// NewCachedDoctorAdapter creates a new cached doctor adapter
func NewCachedDoctorAdapter(adapter repositories.DoctorRepository, cache providers.CacheProvider, metrics *observability.Metrics) repositories.DoctorRepository {
	return &CachedDoctorAdapter{
		adapter: adapter,
		cache:   cache,
		metrics: metrics,
	}
}

// GetByID retrieves a doctor by ID with caching
func (a *CachedDoctorAdapter) GetByID(ctx context.Context, id int64) (*entities.Doctor, error) {
	cacheKey := providers.DoctorCacheKey(id)

	var doctor entities.Doctor
	if a.readCache(ctx, cacheKey, &doctor) {
		return &doctor, nil
	}

	fetched, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	a.writeCache(cacheKey, fetched, doctorByIDTTL)
	return fetched, nil
}

// List retrieves doctors with caching
func (a *CachedDoctorAdapter) List(ctx context.Context, filter repositories.DoctorFilter) ([]*entities.Doctor, error) {
	cacheKey := doctorsListCacheKey(filter)

	var doctors []*entities.Doctor
	if a.readCache(ctx, cacheKey, &doctors) {
		return doctors, nil
	}

	fetched, err := a.adapter.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	a.writeCache(cacheKey, fetched, doctorsListTTL)
	return fetched, nil
}

// Create passes through
func (a *CachedDoctorAdapter) Create(ctx context.Context, doctor *entities.Doctor) error {
	return a.adapter.Create(ctx, doctor)
}

// Update passes through
func (a *CachedDoctorAdapter) Update(ctx context.Context, doctor *entities.Doctor) error {
	return a.adapter.Update(ctx, doctor)
}

func (a *CachedDoctorAdapter) readCache(ctx context.Context, key string, dest interface{}) bool {
	cached, err := a.cache.Get(ctx, key)
	if err != nil {
		observability.RecordCacheMiss(ctx, a.metrics, doctorCacheName)
		return false
	}
	if err := json.Unmarshal(cached, dest); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to unmarshal cached doctor data")
		observability.RecordCacheMiss(ctx, a.metrics, doctorCacheName)
		return false
	}
	observability.RecordCacheHit(ctx, a.metrics, doctorCacheName)
	return true
}

// writeCache stores the value asynchronously so the response is not blocked on Redis.
func (a *CachedDoctorAdapter) writeCache(key string, value interface{}, ttl int) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to marshal doctor data for cache")
		return
	}
	go func() {
		if err := a.cache.Set(context.Background(), key, data, ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to cache doctor data")
		}
	}()
}
