// Package cache stores serialized forecast responses keyed by dataset
// version, selection and horizon.
package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/crimecast/crimecast/internal/config"
	"github.com/crimecast/crimecast/internal/utils"
)

// Cache is a byte-oriented key/value store with expiry
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the configured TTL
	Set(ctx context.Context, key string, value []byte) error

	// Close releases the backend
	Close() error
}

// Key joins key parts with ':' after escaping separators inside parts
func Key(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = strings.ReplaceAll(p, ":", "%3A")
	}
	return strings.Join(escaped, ":")
}

// New creates a cache from configuration
func New(cfg config.CacheConfig) (Cache, error) {
	switch utils.CacheType(cfg.Type) {
	case utils.CacheTypeNone:
		return NewNoop(), nil
	case utils.CacheTypeMemory, "":
		size := cfg.Size
		if size <= 0 {
			size = utils.DefaultCacheSize
		}
		return NewMemory(size, cfg.TTL)
	case utils.CacheTypeRedis:
		return NewRedis(RedisConfig{
			URL:      cfg.RedisURL,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
			TTL:      cfg.TTL,
		})
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.Type)
	}
}

// Noop never stores anything
type Noop struct{}

// NewNoop creates a cache that always misses
func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

func (n *Noop) Set(ctx context.Context, key string, value []byte) error {
	return nil
}

func (n *Noop) Close() error {
	return nil
}
