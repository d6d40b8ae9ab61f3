// Package cache holds the rate-limit attempt stores.
package cache

import "github.com/BradenHooton/leadintake/internal/models"

// UpdateFunc receives the current entry (found is false when there is none)
// and returns the entry to store. Returning write=false leaves the store
// untouched. It may be called more than once when a store retries.
type UpdateFunc func(current models.RateLimitEntry, found bool) (next models.RateLimitEntry, write bool)
