package cache

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// BytesCache is a minimal cache API storing raw bytes with TTL.
type BytesCache interface {
	GetBytes(ctx context.Context, key string) (b []byte, ok bool, err error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key joins a snapshot version and request parts into a cache key. Entries
// for an older snapshot are never read again and age out by TTL.
func Key(version uint64, parts ...string) string {
	var b strings.Builder
	b.WriteString("v")
	b.WriteString(strconv.FormatUint(version, 10))
	for _, p := range parts {
		b.WriteByte('|')
		b.WriteString(p)
	}
	return b.String()
}
