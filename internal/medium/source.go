package medium

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/madelynarsenault/portfolio/internal/cache"
	"github.com/madelynarsenault/portfolio/internal/logger"
)

const (
	SourceJSON = "json"
	SourceRSS  = "rss"
)

// Source fetches a user's profile from Medium.
type Source interface {
	Name() string
	Fetch(ctx context.Context, username string) (*Profile, error)
}

type jsonSource struct{ c *Client }

func (s jsonSource) Name() string { return SourceJSON }

func (s jsonSource) Fetch(ctx context.Context, username string) (*Profile, error) {
	return s.c.FetchProfile(ctx, username)
}

type rssSource struct{ c *Client }

func (s rssSource) Name() string { return SourceRSS }

func (s rssSource) Fetch(ctx context.Context, username string) (*Profile, error) {
	return s.c.FetchFeed(ctx, username)
}

// Source picks the endpoint by name; empty means JSON.
func (c *Client) Source(kind string) (Source, error) {
	switch kind {
	case "", SourceJSON:
		return jsonSource{c}, nil
	case SourceRSS:
		return rssSource{c}, nil
	default:
		return nil, fmt.Errorf("unknown medium source %q", kind)
	}
}

// CachedSource serves profiles from store while they are fresh. Cache
// failures are logged and fall through to the wrapped source.
type CachedSource struct {
	Source Source
	Store  cache.Store
	TTL    time.Duration
}

func (s *CachedSource) Name() string { return s.Source.Name() }

func (s *CachedSource) Fetch(ctx context.Context, username string) (*Profile, error) {
	key := fmt.Sprintf("%s:%s", s.Source.Name(), trimAt(username))

	if b, ok, err := s.Store.Get(ctx, key); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("medium cache read failed")
	} else if ok {
		var p Profile
		if err := json.Unmarshal(b, &p); err == nil {
			logger.Debug().Str("key", key).Msg("medium profile served from cache")
			return &p, nil
		}
		logger.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	}

	p, err := s.Source.Fetch(ctx, username)
	if err != nil {
		return nil, err
	}

	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	if err := s.Store.Set(ctx, key, b, s.TTL); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("medium cache write failed")
	}
	return p, nil
}
