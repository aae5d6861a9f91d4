package utils

import "time"

// =============================================================================
// Timeout Constants
// =============================================================================

// HTTP Handler Timeouts
const (
	// DefaultRequestTimeout is the default timeout for HTTP requests
	DefaultRequestTimeout = 30 * time.Second

	// ShutdownTimeout bounds graceful shutdown of the HTTP server
	ShutdownTimeout = 10 * time.Second

	// CacheOperationTimeout bounds a single cache lookup or store
	CacheOperationTimeout = 2 * time.Second

	// PublishTimeout bounds publishing a single event
	PublishTimeout = 5 * time.Second

	// ConnectTimeout bounds the initial ping of a remote backend
	ConnectTimeout = 5 * time.Second
)

// =============================================================================
// Forecast Constants
// =============================================================================

const (
	// DefaultHorizon is the number of years forecast when none is requested
	DefaultHorizon = 5

	// MaxHorizon is the largest horizon accepted by default
	MaxHorizon = 50

	// DefaultFitTimeout bounds a single model fit
	DefaultFitTimeout = 30 * time.Second

	// SubjectForecastCompleted is the event subject published after each run
	SubjectForecastCompleted = "forecast.completed"
)

// =============================================================================
// Buffer Size Constants
// =============================================================================

const (
	// DefaultBufferSize is the default buffer size for channels
	DefaultBufferSize = 100

	// DefaultCacheSize is the default number of entries in the memory cache
	DefaultCacheSize = 256

	// DefaultCacheTTL is the default lifetime of a cached forecast
	DefaultCacheTTL = 10 * time.Minute
)

// =============================================================================
// Queue Type Constants
// =============================================================================
// QueueType represents the type of event queue
type QueueType string

const (
	// QueueTypeNone disables event publishing (default)
	QueueTypeNone QueueType = "none"

	// QueueTypeNATS represents NATS core publishing
	QueueTypeNATS QueueType = "nats"

	// QueueTypeRedis represents Redis Streams queue
	QueueTypeRedis QueueType = "redis"

	// QueueTypeKafka represents Apache Kafka queue
	QueueTypeKafka QueueType = "kafka"

	// QueueTypeMemory represents in-memory queue (for testing)
	QueueTypeMemory QueueType = "memory"
)

// =============================================================================
// Cache Type Constants
// =============================================================================
// CacheType represents the type of forecast cache
type CacheType string

const (
	// CacheTypeNone disables caching
	CacheTypeNone CacheType = "none"

	// CacheTypeMemory represents the in-process LRU cache (default)
	CacheTypeMemory CacheType = "memory"

	// CacheTypeRedis represents a shared Redis cache
	CacheTypeRedis CacheType = "redis"
)

// Version is reported by the health endpoint and the CLI
const Version = "1.0.0"
