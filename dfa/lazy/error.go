package lazy

import "fmt"

// ErrorKind classifies why the lazy DFA could not answer.
type ErrorKind uint8

const (
	// CacheFull means one search cleared its cache more than
	// Config.MaxCacheClears times.
	CacheFull ErrorKind = iota

	// StateLimitExceeded means a DFA state would hold more than
	// Config.DeterminizationLimit NFA states.
	StateLimitExceeded

	// InvalidConfig means Config.Validate rejected the configuration.
	InvalidConfig
)

var kindNames = [...]string{
	CacheFull:          "cache full",
	StateLimitExceeded: "state limit exceeded",
	InvalidConfig:      "invalid config",
}

func (k ErrorKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", k)
}

// Sentinels for errors.Is. Any DFAError of the same kind matches.
var (
	ErrCacheFull          = &DFAError{Kind: CacheFull}
	ErrStateLimitExceeded = &DFAError{Kind: StateLimitExceeded}
	ErrInvalidConfig      = &DFAError{Kind: InvalidConfig}
)

// DFAError reports a search or construction the lazy DFA gave up on.
// Search errors are not fatal: the caller reruns the search on the PikeVM.
type DFAError struct {
	Kind   ErrorKind
	Detail string
}

// Error implements the error interface.
func (e *DFAError) Error() string {
	if e.Detail == "" {
		return "lazy dfa: " + e.Kind.String()
	}
	return "lazy dfa: " + e.Kind.String() + ": " + e.Detail
}

// Is reports whether target is a DFAError of the same kind.
func (e *DFAError) Is(target error) bool {
	t, ok := target.(*DFAError)
	return ok && t.Kind == e.Kind
}
