package parser

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// TimestampLayout is the Go layout of the access-log date field,
// e.g. "14/06/2017:16:47:02 +1000". Day and month may omit the leading zero.
const TimestampLayout = "2/1/2006:15:04:05 -0700"

// DefaultCacheSize is the number of distinct timestamp strings remembered.
// Busy logs repeat the same second many times over.
const DefaultCacheSize = 4096

// TimestampParser parses access-log timestamps, caching recent results.
type TimestampParser struct {
	layout string
	cache  *lru.Cache[string, time.Time]
}

// NewTimestampParser creates a parser with an LRU cache of the given size.
// A size <= 0 disables caching.
func NewTimestampParser(cacheSize int) (*TimestampParser, error) {
	p := &TimestampParser{layout: TimestampLayout}
	if cacheSize > 0 {
		cache, err := lru.New[string, time.Time](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating timestamp cache: %w", err)
		}
		p.cache = cache
	}
	return p, nil
}

// Parse converts the timestamp text into a time.Time.
// Failed parses are not cached.
func (p *TimestampParser) Parse(text string) (time.Time, error) {
	if p.cache != nil {
		if ts, ok := p.cache.Get(text); ok {
			return ts, nil
		}
	}

	ts, err := time.Parse(p.layout, text)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", text, err)
	}

	if p.cache != nil {
		p.cache.Add(text, ts)
	}
	return ts, nil
}

// CacheLen reports how many timestamps are currently cached.
func (p *TimestampParser) CacheLen() int {
	if p.cache == nil {
		return 0
	}
	return p.cache.Len()
}
