package dedup

import (
	"context"

	"github.com/rs/zerolog"
)

// Cache answers whether a delivery was already handled. It owns the identity
// policy and the behavior when the store fails.
type Cache struct {
	store    Store
	keyFunc  KeyFunc
	failOpen bool
	logger   zerolog.Logger
}

// NewCache creates a cache. With failOpen a store error lets the delivery
// through (risking a duplicate reply); without it the delivery is dropped.
func NewCache(store Store, keyFunc KeyFunc, failOpen bool, logger zerolog.Logger) *Cache {
	return &Cache{
		store:    store,
		keyFunc:  keyFunc,
		failOpen: failOpen,
		logger:   logger.With().Str("component", "dedup").Logger(),
	}
}

// IsDuplicate records the delivery and reports whether it should be skipped
func (c *Cache) IsDuplicate(ctx context.Context, s Subject) bool {
	key := c.keyFunc(s)
	if key == "" {
		c.logger.Debug().Str("event_id", s.EventID).Msg("No dedup key, processing without check")
		return false
	}

	duplicate, err := c.store.CheckAndRecord(ctx, key)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("key", key).
			Bool("fail_open", c.failOpen).
			Msg("Dedup store unavailable")
		return !c.failOpen
	}

	if duplicate {
		c.logger.Info().Str("key", key).Msg("Duplicate delivery skipped")
	}
	return duplicate
}
