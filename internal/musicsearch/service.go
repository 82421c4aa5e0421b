package musicsearch

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultCacheTTL   = 5 * time.Minute
	DefaultTimeout    = 7 * time.Second
	DefaultMaxResults = 10

	maxCacheEntries = 512
)

// Observer receives cache and upstream outcomes for metrics.
type Observer interface {
	SearchCache(result string)
	SearchUpstreamError(kind string)
}

type noopObserver struct{}

func (noopObserver) SearchCache(string)         {}
func (noopObserver) SearchUpstreamError(string) {}

type Options struct {
	CacheTTL   time.Duration
	Timeout    time.Duration
	MaxResults int
	Observer   Observer
	Logger     logrus.FieldLogger
}

type cacheEntry struct {
	at     time.Time
	tracks []Track
}

// Service fronts a Provider with query normalization, a TTL cache and a
// bounded upstream call.
type Service struct {
	provider Provider
	ttl      time.Duration
	timeout  time.Duration
	max      int
	observer Observer
	logger   logrus.FieldLogger

	mu    sync.Mutex
	cache map[string]cacheEntry
	now   func() time.Time
}

func NewService(p Provider, opts Options) *Service {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	if opts.Observer == nil {
		opts.Observer = noopObserver{}
	}
	if opts.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opts.Logger = l
	}
	return &Service{
		provider: p,
		ttl:      opts.CacheTTL,
		timeout:  opts.Timeout,
		max:      opts.MaxResults,
		observer: opts.Observer,
		logger:   opts.Logger.WithField("component", "musicsearch"),
		cache:    make(map[string]cacheEntry),
		now:      time.Now,
	}
}

func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Search returns tracks for raw. Cache hits skip the provider entirely.
func (s *Service) Search(ctx context.Context, raw string) ([]Track, error) {
	q, err := NormalizeQuery(raw)
	if err != nil {
		return nil, err
	}
	if tracks, ok := s.lookup(q); ok {
		s.observer.SearchCache("hit")
		return tracks, nil
	}
	s.observer.SearchCache("miss")

	if s.provider == nil {
		s.observer.SearchUpstreamError("fetch")
		return nil, ErrUpstreamFetch
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	found, err := s.provider.Search(callCtx, q, s.max)
	if err != nil {
		log := s.logger.WithError(err).WithField("query", q)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			s.observer.SearchUpstreamError("timeout")
			log.Warn("search timed out")
			return nil, ErrUpstreamTimeout
		}
		s.observer.SearchUpstreamError("fetch")
		log.Warn("search failed")
		return nil, ErrUpstreamFetch
	}

	tracks := sanitize(found, s.max)
	s.store(q, tracks)
	return cloneTracks(tracks), nil
}

func (s *Service) lookup(q string) ([]Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.cache[q]
	if !ok {
		return nil, false
	}
	if s.now().Sub(entry.at) >= s.ttl {
		delete(s.cache, q)
		return nil, false
	}
	return cloneTracks(entry.tracks), true
}

func (s *Service) store(q string, tracks []Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if len(s.cache) >= maxCacheEntries {
		for k, e := range s.cache {
			if now.Sub(e.at) >= s.ttl {
				delete(s.cache, k)
			}
		}
	}
	if len(s.cache) >= maxCacheEntries {
		var oldest string
		var oldestAt time.Time
		for k, e := range s.cache {
			if oldest == "" || e.at.Before(oldestAt) {
				oldest, oldestAt = k, e.at
			}
		}
		delete(s.cache, oldest)
	}
	s.cache[q] = cacheEntry{at: now, tracks: cloneTracks(tracks)}
}

func (s *Service) CacheLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache)
}

func cloneTracks(in []Track) []Track {
	return append([]Track(nil), in...)
}
