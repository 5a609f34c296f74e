package listview

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
)

// Persister is the keyed durable store behind a Store. Load returns
// ErrStateNotFound when nothing is stored under key.
type Persister interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// StoreConfig configures a Store. Key and Persister are optional; without both
// the state lives only as long as the Store.
type StoreConfig struct {
	Key       string
	Persister Persister
	Defaults  Defaults
	Logger    *slog.Logger
}

// Store owns the FilterState of one list view. It is not safe for concurrent
// use; View serializes access to it.
type Store struct {
	key       string
	persister Persister
	defaults  Defaults
	logger    *slog.Logger
	state     FilterState
}

// NewStore builds a Store, restoring any previously persisted state. Missing or
// unreadable state falls back to the defaults.
func NewStore(ctx context.Context, cfg StoreConfig) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		key:       cfg.Key,
		persister: cfg.Persister,
		defaults:  cfg.Defaults,
		logger:    logger,
	}
	s.state = s.restore(ctx)
	return s
}

// State returns the current state.
func (s *Store) State() FilterState {
	return s.state.clone()
}

// Defaults returns the configured defaults.
func (s *Store) Defaults() Defaults {
	return s.defaults
}

func (s *Store) SetPage(ctx context.Context, n int) FilterState {
	return s.apply(ctx, s.state.SetPage(n))
}

func (s *Store) SetPageSize(ctx context.Context, n int) FilterState {
	return s.apply(ctx, s.state.SetPageSize(n))
}

func (s *Store) SetSort(ctx context.Context, column string, dir SortDirection) FilterState {
	return s.apply(ctx, s.state.SetSort(column, dir))
}

func (s *Store) ToggleSort(ctx context.Context, column string) FilterState {
	return s.apply(ctx, s.state.ToggleSort(column))
}

func (s *Store) SetSearch(ctx context.Context, text string) FilterState {
	return s.apply(ctx, s.state.SetSearch(text))
}

func (s *Store) SetDateRange(ctx context.Context, r *DateRange) FilterState {
	return s.apply(ctx, s.state.SetDateRange(r))
}

func (s *Store) SetExtraFilter(ctx context.Context, key, value string) FilterState {
	return s.apply(ctx, s.state.SetExtraFilter(key, value))
}

// Replace swaps in a state built elsewhere, e.g. parsed from a request.
func (s *Store) Replace(ctx context.Context, next FilterState) FilterState {
	return s.apply(ctx, next.Normalize())
}

// ClearAll returns to the configured defaults.
func (s *Store) ClearAll(ctx context.Context) FilterState {
	return s.apply(ctx, s.defaults.State())
}

func (s *Store) apply(ctx context.Context, next FilterState) FilterState {
	s.state = next
	s.persist(ctx)
	return next.clone()
}

func (s *Store) persist(ctx context.Context) {
	if s.persister == nil || s.key == "" {
		return
	}
	data, err := json.Marshal(s.state)
	if err != nil {
		s.logger.Warn("encode list state", slog.String("view", s.key), slog.Any("error", err))
		return
	}
	if err := s.persister.Save(ctx, s.key, data); err != nil {
		s.logger.Warn("persist list state", slog.String("view", s.key), slog.Any("error", err))
	}
}

func (s *Store) restore(ctx context.Context) FilterState {
	defaults := s.defaults.State()
	if s.persister == nil || s.key == "" {
		return defaults
	}
	data, err := s.persister.Load(ctx, s.key)
	if err != nil {
		if !errors.Is(err, ErrStateNotFound) {
			s.logger.Warn("load list state", slog.String("view", s.key), slog.Any("error", err))
		}
		return defaults
	}
	var state FilterState
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Warn("decode list state", slog.String("view", s.key), slog.Any("error", err))
		return defaults
	}
	return state.Normalize()
}
