package domain

import "context"

// Cache is a TTL key/value cache. Get reports a value only while it is fresh
// and does not distinguish a missing key from an expired one. Set always
// overwrites. Values are JSON-encoded payloads.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte) error
}
