package search

import (
	"context"
	"encoding/json"
)

// cacheGet reads and decodes a typed payload. An entry that no longer
// decodes into T (written under an older shape) is invalidated and
// reported as a miss.
func cacheGet[T any](ctx context.Context, c ResultCache, namespace string, params any) (T, bool) {
	var value T
	raw, ok := c.Get(ctx, namespace, params)
	if !ok {
		return value, false
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		c.Invalidate(ctx, namespace, params)
		var zero T
		return zero, false
	}
	return value, true
}

// cachePut encodes and stores a typed payload. Unencodable values are
// silently skipped; the cache is advisory.
func cachePut[T any](ctx context.Context, c ResultCache, namespace string, params any, value T) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.Set(ctx, namespace, params, raw)
}
