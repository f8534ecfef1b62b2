package dedupe

// Option applies a configuration option to the in-memory tracker.
type Option func(*inMemoryTracker)

// WithMaxSize sets the maximum number of keys to keep in memory.
// If maxSize > 0: bounded mode, oldest key evicted first.
// If maxSize <= 0: unbounded mode.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryTracker) {
		d.maxSize = maxSize
	}
}
