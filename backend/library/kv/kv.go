// Package kv is the key-value store holding session tokens.
package kv

import (
	"context"
	"time"
)

// Store sets, reads and deletes string values. A ttl of zero means the key
// never expires. Get reports absent and expired keys with ok == false and a
// nil error; a non-nil error always means the store could not be reached.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
