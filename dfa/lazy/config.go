package lazy

// Config bounds the memory one Cache may use.
type Config struct {
	// MaxStates is the number of DFA states a Cache holds before it is
	// cleared and rebuilt on demand. At least 2: the dead state and a start.
	MaxStates uint32

	// MaxCacheClears is how many clears one search tolerates before failing
	// with ErrCacheFull. A working set that keeps overflowing the cache runs
	// faster on the PikeVM.
	MaxCacheClears int

	// DeterminizationLimit caps the NFA states in one DFA state. Larger sets
	// fail with ErrStateLimitExceeded.
	DeterminizationLimit int
}

// DefaultConfig returns 10,000 states, 5 clears and a 10,000 state subset limit.
func DefaultConfig() Config {
	return Config{
		MaxStates:            10_000,
		MaxCacheClears:       5,
		DeterminizationLimit: 10_000,
	}
}

// Validate returns an ErrInvalidConfig-kind error naming the first bad field.
func (c *Config) Validate() error {
	switch {
	case c.MaxStates < 2:
		return &DFAError{Kind: InvalidConfig, Detail: "MaxStates must be at least 2"}
	case c.MaxCacheClears < 0:
		return &DFAError{Kind: InvalidConfig, Detail: "MaxCacheClears must not be negative"}
	case c.DeterminizationLimit <= 0:
		return &DFAError{Kind: InvalidConfig, Detail: "DeterminizationLimit must be positive"}
	}
	return nil
}

// WithMaxStates returns a copy of c with MaxStates set.
func (c Config) WithMaxStates(n uint32) Config {
	c.MaxStates = n
	return c
}

// WithMaxCacheClears returns a copy of c with MaxCacheClears set.
func (c Config) WithMaxCacheClears(n int) Config {
	c.MaxCacheClears = n
	return c
}

// WithDeterminizationLimit returns a copy of c with DeterminizationLimit set.
func (c Config) WithDeterminizationLimit(n int) Config {
	c.DeterminizationLimit = n
	return c
}
