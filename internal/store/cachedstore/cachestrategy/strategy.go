// Package cachestrategy defines cache eviction strategy interfaces.
package cachestrategy

// Strategy decides which cached objects to keep. It must be safe for
// concurrent use.
type Strategy interface {
	// Get returns the value for key and marks it as used.
	Get(key string) ([]byte, bool)

	// Add stores value under key and reports whether anything was evicted
	// to make room.
	Add(key string, value []byte) (evicted bool)

	// Remove drops key and reports whether it was present.
	Remove(key string) bool

	// Len is the number of stored values.
	Len() int

	// Bytes is the total length of the stored values.
	Bytes() int64
}
