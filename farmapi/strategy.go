package farmapi

// Strategy decides whether a call prefers the cache or the network.
type Strategy int

const (
	// StrategyDefault picks per HTTP method: GET requests use
	// CacheFirst, everything else NetworkOnly.
	StrategyDefault Strategy = iota

	// CacheFirst serves an unexpired cached value when present and only
	// hits the network on a miss.
	CacheFirst

	// NetworkFirst always attempts the network and refreshes the cache
	// on success. On a network or HTTP failure it falls back to an
	// unexpired cached value if one exists.
	NetworkFirst

	// NetworkOnly bypasses the cache entirely. Mutating requests use
	// this and invalidate configured patterns on success.
	NetworkOnly
)

func (s Strategy) String() string {
	switch s {
	case CacheFirst:
		return "cache-first"
	case NetworkFirst:
		return "network-first"
	case NetworkOnly:
		return "network-only"
	default:
		return "default"
	}
}

// defaultStrategy maps an HTTP method to its caching behavior.
// Non-idempotent methods never read from the cache.
func defaultStrategy(method string) Strategy {
	if method == "GET" {
		return CacheFirst
	}
	return NetworkOnly
}
