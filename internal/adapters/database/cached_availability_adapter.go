package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/openclinic/vaccine-scheduler/internal/domain/entities"
	"github.com/openclinic/vaccine-scheduler/internal/domain/providers"
	"github.com/openclinic/vaccine-scheduler/internal/domain/repositories"
)

// CachedAvailabilityAdapter wraps an AvailabilityRepository with a short-TTL
// read cache on ListByDate. Mutations always hit the store and invalidate the
// date's entry; ClaimAny is never served from cache since a stale read there
// would break the claim serialization point.
type CachedAvailabilityAdapter struct {
	adapter repositories.AvailabilityRepository
	cache   providers.CacheProvider
}

// NewCachedAvailabilityAdapter creates a new cached availability adapter
func NewCachedAvailabilityAdapter(adapter repositories.AvailabilityRepository, cache providers.CacheProvider) repositories.AvailabilityRepository {
	return &CachedAvailabilityAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// scheduleTTL is deliberately short: the schedule changes with every
// reservation and readers only tolerate seconds of staleness.
const scheduleTTL = 15

func scheduleCacheKey(date time.Time) string {
	return fmt.Sprintf("schedule:slots:%s", date.Format(entities.DateFormat))
}

// ListByDate retrieves the open slots for a date with caching
func (a *CachedAvailabilityAdapter) ListByDate(ctx context.Context, date time.Time) ([]*entities.AvailabilitySlot, error) {
	cacheKey := scheduleCacheKey(date)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var slots []*entities.AvailabilitySlot
		if err := json.Unmarshal(cached, &slots); err == nil {
			return slots, nil
		}
	}

	slots, err := a.adapter.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(slots); err == nil {
		if err := a.cache.Set(ctx, cacheKey, data, scheduleTTL); err != nil {
			log.Printf("Failed to cache schedule for %s: %v", date.Format(entities.DateFormat), err)
		}
	}

	return slots, nil
}

// Publish inserts a slot and invalidates the date's cached schedule
func (a *CachedAvailabilityAdapter) Publish(ctx context.Context, date time.Time, caregiverID string) error {
	if err := a.adapter.Publish(ctx, date, caregiverID); err != nil {
		return err
	}
	a.invalidate(ctx, date)
	return nil
}

// ClaimAny claims a slot and invalidates the date's cached schedule
func (a *CachedAvailabilityAdapter) ClaimAny(ctx context.Context, date time.Time) (string, error) {
	caregiverID, err := a.adapter.ClaimAny(ctx, date)
	if err != nil {
		return "", err
	}
	a.invalidate(ctx, date)
	return caregiverID, nil
}

// Restore re-inserts a slot and invalidates the date's cached schedule
func (a *CachedAvailabilityAdapter) Restore(ctx context.Context, date time.Time, caregiverID string) error {
	if err := a.adapter.Restore(ctx, date, caregiverID); err != nil {
		return err
	}
	a.invalidate(ctx, date)
	return nil
}

func (a *CachedAvailabilityAdapter) invalidate(ctx context.Context, date time.Time) {
	if err := a.cache.Delete(ctx, scheduleCacheKey(date)); err != nil {
		log.Printf("Failed to invalidate schedule cache for %s: %v", date.Format(entities.DateFormat), err)
	}
}
