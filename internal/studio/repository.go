package studio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"boxoffice/internal/shared/constants"
	"boxoffice/pkg/cache"
)

// Repository persists editor sessions
type Repository interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	cache cache.Service
	ttl   time.Duration
}

func NewRepository(cacheService cache.Service, ttl time.Duration) Repository {
	return &repository{cache: cacheService, ttl: ttl}
}

// Get loads a session; reading it counts as activity and restarts the idle timeout
func (r *repository) Get(ctx context.Context, id string) (*Session, error) {
	key := constants.BuildEditorSessionKey(id)

	var session Session
	if err := r.cache.Get(ctx, key, &session); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load editor session: %w", err)
	}
	if err := r.cache.Touch(ctx, key, r.ttl); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to refresh editor session: %w", err)
	}
	return &session, nil
}

// Save writes the session and restarts its idle timeout
func (r *repository) Save(ctx context.Context, session *Session) error {
	if err := r.cache.Set(ctx, constants.BuildEditorSessionKey(session.ID), session, r.ttl); err != nil {
		return fmt.Errorf("failed to store editor session: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.cache.Delete(ctx, constants.BuildEditorSessionKey(id))
}
