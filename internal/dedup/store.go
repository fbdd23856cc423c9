package dedup

import (
	"context"
	"time"
)

// Store records keys and answers whether a key was already seen within the
// store's window.
//
// CheckAndRecord returns true when key was first recorded less than one
// window ago. Otherwise it records key with the current time and returns
// false. The check and the insert are atomic: among concurrent callers with
// the same key exactly one gets false. A record is never refreshed by a
// later call; only the first sighting counts.
type Store interface {
	CheckAndRecord(ctx context.Context, key string) (bool, error)
}

// Clock returns the current time
type Clock func() time.Time
