package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Decision результат одной проверки лимита
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter до сброса окна по часам Store
	RetryAfter time.Duration
}

type window struct {
	count   int
	resetAt time.Time
}

// Store счетчик фиксированного окна: limit запросов на ключ за window.
// У каждого лимитера свой Store, глобальных карт нет
type Store struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	entries map[string]*window
}

type Option func(*Store)

// WithClock подменяет часы, в тестах
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(limit int, windowSize time.Duration, opts ...Option) *Store {
	if limit <= 0 {
		limit = 1
	}
	if windowSize <= 0 {
		windowSize = time.Minute
	}
	s := &Store{
		limit:   limit,
		window:  windowSize,
		now:     time.Now,
		entries: make(map[string]*window),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow учитывает запрос и говорит, пропускать ли его.
// Отклоненные запросы счетчик не увеличивают
func (s *Store) Allow(key string) Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.entries[key]
	if !ok || !now.Before(entry.resetAt) {
		entry = &window{resetAt: now.Add(s.window)}
		s.entries[key] = entry
	}

	if entry.count >= s.limit {
		return Decision{
			Allowed:    false,
			Limit:      s.limit,
			Remaining:  0,
			ResetAt:    entry.resetAt,
			RetryAfter: entry.resetAt.Sub(now),
		}
	}

	entry.count++
	return Decision{
		Allowed:    true,
		Limit:      s.limit,
		Remaining:  s.limit - entry.count,
		ResetAt:    entry.resetAt,
		RetryAfter: entry.resetAt.Sub(now),
	}
}

// ResetIn сколько осталось до сброса окна ключа, 0 если окна нет
func (s *Store) ResetIn(key string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return 0
	}
	if d := entry.resetAt.Sub(s.now()); d > 0 {
		return d
	}
	return 0
}

// Cleanup удаляет истекшие окна, возвращает сколько удалено
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, entry := range s.entries {
		if !now.Before(entry.resetAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// RunCleanup периодически чистит Store, пока не отменен ctx
func (s *Store) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Cleanup()
		case <-ctx.Done():
			return
		}
	}
}
