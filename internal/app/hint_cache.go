package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"english-star-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// HintCache memoizes hints per (skill, topic) with TTL so repeated practice
// views do not hammer the provider. Implements HintProvider.
type HintCache struct {
	provider HintProvider
	ttl      time.Duration
	clock    func() time.Time
	sf       singleflight.Group
	rnd      *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedHint
}

type cachedHint struct {
	hint      string
	expiresAt time.Time
}

func NewHintCache(provider HintProvider, ttl time.Duration) *HintCache {
	return &HintCache{
		provider: provider,
		ttl:      ttl,
		clock:    time.Now,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:    make(map[string]cachedHint),
	}
}

func (c *HintCache) QuickHint(ctx context.Context, skill domain.Skill, topic string) (string, error) {
	key := string(skill) + "|" + topic
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[key]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.hint, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[key]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.hint, nil
		}
		c.mu.RUnlock()

		hint, err := c.provider.QuickHint(ctx, skill, topic)
		if err != nil {
			return "", err
		}

		c.mu.Lock()
		c.cache[key] = cachedHint{
			hint:      hint,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return hint, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *HintCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
