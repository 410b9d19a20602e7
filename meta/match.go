package meta

// Match is the half-open span [Start, End) of the whole match within the
// searched haystack. It aliases the haystack and copies nothing.
type Match struct {
	haystack   []byte
	start, end int
}

// NewMatch returns the match of haystack[start:end].
func NewMatch(start, end int, haystack []byte) *Match {
	return &Match{haystack: haystack, start: start, end: end}
}

func (m *Match) Start() int { return m.start }

func (m *Match) End() int { return m.end }

func (m *Match) Len() int { return m.end - m.start }

// IsEmpty reports a zero-width match, such as `a*` against "b".
func (m *Match) IsEmpty() bool { return m.start == m.end }

// Bytes returns the matched text. It shares memory with the haystack and
// is non-nil for an empty match.
func (m *Match) Bytes() []byte {
	return m.haystack[m.start:m.end:m.end]
}

func (m *Match) String() string { return string(m.haystack[m.start:m.end]) }
