package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/providers"
)

const invalidationTimeout = 5 * time.Second

// HTTP response families that embed doctor profiles.
var doctorResponseFamilies = []string{"doctors", "specialities"}

// CacheInvalidationService drops cached doctor data when a doctor_updated
// event arrives. Slot events are ignored: available slots are never cached.
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	started  bool
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start subscribes to the global doctor channel
func (s *CacheInvalidationService) Start() error {
	events, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelDoctorUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to doctor updates: %w", err)
	}

	s.started = true
	go s.processEvents(events)
	log.Info().Str("channel", providers.EventChannelDoctorUpdates).Msg("cache invalidation service started")
	return nil
}

// Stop stops the service and waits for the event loop to exit
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	if s.started {
		<-s.done
	}
	log.Info().Msg("cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(events <-chan *entities.DoctorEvent) {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if event == nil || event.EventType != entities.DoctorEventTypeProfileUpdated {
				continue
			}
			s.handleEvent(event)
		}
	}
}

func (s *CacheInvalidationService) handleEvent(event *entities.DoctorEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), invalidationTimeout)
	defer cancel()

	if err := s.InvalidateDoctor(ctx, event.DoctorID); err != nil {
		log.Warn().Err(err).
			Str("event_id", event.ID).
			Int64("doctor_id", event.DoctorID).
			Msg("cache invalidation incomplete")
		return
	}
	log.Debug().Str("event_id", event.ID).Int64("doctor_id", event.DoctorID).Msg("doctor cache invalidated")
}

// InvalidateDoctor removes the cached profile of one doctor together with
// every cached list or HTTP response that may embed it.
func (s *CacheInvalidationService) InvalidateDoctor(ctx context.Context, doctorID int64) error {
	if err := s.cache.Delete(ctx, providers.DoctorCacheKey(doctorID)); err != nil {
		return fmt.Errorf("failed to invalidate doctor %d: %w", doctorID, err)
	}
	return s.invalidateLists(ctx)
}

// InvalidateAll removes every cached doctor entry. Intended for maintenance
// after bulk imports.
func (s *CacheInvalidationService) InvalidateAll(ctx context.Context) error {
	if err := s.cache.DeletePattern(ctx, "doctor:*"); err != nil {
		return fmt.Errorf("failed to invalidate doctors: %w", err)
	}
	return s.invalidateLists(ctx)
}

func (s *CacheInvalidationService) invalidateLists(ctx context.Context) error {
	patterns := []string{providers.DoctorListCachePattern}
	for _, family := range doctorResponseFamilies {
		patterns = append(patterns, providers.HTTPCacheFamilyPattern(family))
	}
	for _, pattern := range patterns {
		if err := s.cache.DeletePattern(ctx, pattern); err != nil {
			return fmt.Errorf("failed to invalidate pattern %s: %w", pattern, err)
		}
	}
	return nil
}
