// Package cache provides read-through caches for persisted state blobs.
// A cache miss, including an expired entry, is reported as shopstate.ErrNotFound.
package cache

import (
	"github.com/CreativeUnicorns/shopstate"
)

var (
	_ shopstate.Cache = (*MemoryCache)(nil)
	_ shopstate.Cache = (*RedisCache)(nil)
)
