// Package cache stores finished match results in Redis. Keys are derived from
// the taxonomy fingerprint, the match mode, and both documents, so a changed
// vocabulary never serves stale results. Identical concurrent requests are
// collapsed into one scoring run.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/matcher/scorer"
	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/internal/matcher/skills"
)

const keyPrefix = "match:"

// Store is the key-value backend; *redis.Client satisfies it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
}

// Stats are the hit and miss counts since the process started.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// ResultCache caches scorer.Result values for one taxonomy and match mode.
type ResultCache struct {
	store     Store
	ttl       time.Duration
	namespace string
	group     singleflight.Group
	logger    *slog.Logger
	hits      atomic.Int64
	misses    atomic.Int64
}

// New returns a cache whose keys are scoped to the extractor's taxonomy and
// mode.
func New(store Store, ttl time.Duration, extractor *skills.Extractor) *ResultCache {
	return &ResultCache{
		store:     store,
		ttl:       ttl,
		namespace: extractor.Taxonomy().Fingerprint() + "/" + string(extractor.Mode()),
		logger:    slog.Default().With("component", "result-cache"),
	}
}

// GetOrCompute returns the cached result for the pair or runs compute and
// stores its result. The bool reports a cache hit. Store failures are logged
// and degrade to computing.
func (c *ResultCache) GetOrCompute(ctx context.Context, resume, jd string, compute func() scorer.Result) (scorer.Result, bool) {
	key := c.key(resume, jd)
	if res, ok := c.get(ctx, key); ok {
		c.hits.Add(1)
		return res, true
	}
	c.misses.Add(1)

	v, _, _ := c.group.Do(key, func() (any, error) {
		if res, ok := c.get(ctx, key); ok {
			return res, nil
		}
		res := compute()
		c.set(ctx, key, res)
		return res, nil
	})
	return v.(scorer.Result), false
}

// Invalidate deletes every cached result and returns how many were removed.
func (c *ResultCache) Invalidate(ctx context.Context) (int64, error) {
	n, err := c.store.DeletePrefix(ctx, keyPrefix)
	if err != nil {
		return n, fmt.Errorf("invalidating result cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", n)
	return n, nil
}

// Stats returns counters since start.
func (c *ResultCache) Stats() Stats {
	s := Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}

func (c *ResultCache) get(ctx context.Context, key string) (scorer.Result, bool) {
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache get failed", "key", key, "error", err)
		return scorer.Result{}, false
	}
	if !ok {
		return scorer.Result{}, false
	}
	var res scorer.Result
	if err := json.Unmarshal(data, &res); err != nil {
		c.logger.Warn("cache entry corrupt", "key", key, "error", err)
		return scorer.Result{}, false
	}
	return res, true
}

func (c *ResultCache) set(ctx context.Context, key string, res scorer.Result) {
	data, err := json.Marshal(res)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

// key length-prefixes each part so ("ab","c") and ("a","bc") differ.
func (c *ResultCache) key(resume, jd string) string {
	h := sha256.New()
	var n [8]byte
	for _, part := range []string{c.namespace, resume, jd} {
		binary.BigEndian.PutUint64(n[:], uint64(len(part)))
		h.Write(n[:])
		h.Write([]byte(part))
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil)[:16])
}
