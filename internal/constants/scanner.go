package constants

import "time"

// Scan defaults
const (
	// DefaultScanRadiusKm is the search radius around the listener.
	DefaultScanRadiusKm = 100.0

	// DefaultSlots is how many aircraft narrations a scan produces.
	DefaultSlots = 3

	// MaxSlots bounds the slot index accepted from clients.
	MaxSlots = 5

	// DefaultCacheTTL matches the original ten minute audio cache.
	DefaultCacheTTL = 10 * time.Minute

	// CacheKeyPrecision is the number of decimal places coordinates are
	// rounded to before hashing (~1km, deliberate collisions).
	CacheKeyPrecision = 2

	// EstimatedCruiseSpeedKmh is used for ETA estimates when the provider
	// reports no arrival time (400 mph cruise).
	EstimatedCruiseSpeedKmh = 400 * 1.60934

	// LandingBufferMinutes pads the ETA estimate for descent and taxi.
	LandingBufferMinutes = 30
)

// Free tier limits
const (
	FreePoolMaxSessions   = 100
	FreePoolIndexKey      = "free_pool/index.json"
	FreePoolIndexCacheTTL = 60 * time.Second
	FreeTierRatePerMinute = 10
)

// HTTP header used by operators to pin a provider for one request.
const (
	HeaderProviderOverride = "X-Provider-Override"
	HeaderOverrideSecret   = "X-Override-Secret"
)
