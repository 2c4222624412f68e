package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"icu-workouts/internal/analysis"
	"icu-workouts/internal/intervals"
	"icu-workouts/internal/store"
)

// AthleteSource fetches the athlete record from intervals.icu
type AthleteSource interface {
	AthleteID() string
	GetAthlete(ctx context.Context) (*intervals.Athlete, error)
}

// ProfileRetriever serves the athlete profile from memory, then the sqlite
// cache, then the API. A ttl <= 0 keeps a fetched profile forever.
type ProfileRetriever struct {
	source AthleteSource
	store  *store.Store
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	athlete   *intervals.Athlete
	fetchedAt time.Time
}

// NewProfileRetriever creates a retriever. st may be nil to cache in memory only.
func NewProfileRetriever(source AthleteSource, st *store.Store, ttl time.Duration) *ProfileRetriever {
	return &ProfileRetriever{
		source: source,
		store:  st,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Athlete returns the cached athlete record, refreshing it once the TTL has
// passed. When the refresh fails a stale record is served if one exists.
func (p *ProfileRetriever) Athlete(ctx context.Context) (*intervals.Athlete, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.athlete == nil {
		p.loadCached()
	}
	if p.athlete != nil && p.fresh(p.fetchedAt) {
		return p.athlete, nil
	}

	athlete, err := p.source.GetAthlete(ctx)
	if err != nil {
		if p.athlete != nil && ctx.Err() == nil {
			log.Printf("profile: refresh failed, serving copy from %s: %v", p.fetchedAt.Format(time.RFC3339), err)
			return p.athlete, nil
		}
		return nil, fmt.Errorf("fetching athlete profile: %w", err)
	}

	p.athlete = athlete
	p.fetchedAt = p.now()
	p.saveCached()
	return athlete, nil
}

// Profile returns the zone tables the estimator needs. A profile that can't be
// retrieved yields (nil, nil) so callers fall back to default thresholds.
func (p *ProfileRetriever) Profile(ctx context.Context) (*analysis.AthleteProfile, error) {
	athlete, err := p.Athlete(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Printf("profile: %v", err)
		return nil, nil
	}
	return athlete.Profile(), nil
}

// FetchedAt reports when the cached profile was last fetched
func (p *ProfileRetriever) FetchedAt() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fetchedAt
}

// Invalidate drops the memory and sqlite copies
func (p *ProfileRetriever) Invalidate() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.athlete = nil
	p.fetchedAt = time.Time{}
	if p.store == nil {
		return nil
	}
	if err := p.store.DeleteProfile(p.source.AthleteID()); err != nil {
		return fmt.Errorf("deleting cached profile: %w", err)
	}
	return nil
}

func (p *ProfileRetriever) fresh(fetchedAt time.Time) bool {
	if p.ttl <= 0 {
		return true
	}
	return p.now().Sub(fetchedAt) < p.ttl
}

// loadCached fills the memory copy from sqlite. Must hold mu.
func (p *ProfileRetriever) loadCached() {
	if p.store == nil {
		return
	}

	cached, err := p.store.GetProfile(p.source.AthleteID())
	if err != nil {
		if !errors.Is(err, store.ErrNoCachedProfile) {
			log.Printf("profile: reading cache: %v", err)
		}
		return
	}

	var athlete intervals.Athlete
	if err := json.Unmarshal(cached.Data, &athlete); err != nil {
		log.Printf("profile: decoding cache: %v", err)
		return
	}
	p.athlete = &athlete
	p.fetchedAt = cached.FetchedAt
}

// saveCached writes the memory copy to sqlite. Must hold mu.
func (p *ProfileRetriever) saveCached() {
	if p.store == nil {
		return
	}

	data, err := json.Marshal(p.athlete)
	if err != nil {
		log.Printf("profile: encoding cache: %v", err)
		return
	}
	err = p.store.SaveProfile(&store.CachedProfile{
		AthleteID: p.source.AthleteID(),
		Data:      data,
		FetchedAt: p.fetchedAt,
	})
	if err != nil {
		log.Printf("profile: writing cache: %v", err)
	}
}
