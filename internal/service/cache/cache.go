// Package cache stores fetched candle series between generation passes,
// keyed per provider request, so back-to-back passes and retries do not
// refetch the same history.
package cache

import "time"

// BytesCache stores raw encoded series with a TTL.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
