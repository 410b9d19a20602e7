package rebound

import "iter"

// Captures holds the capture groups of one match.
//
// Group 0 is the whole match. A group that did not take part in the match
// is unset: Get reports ok=false and Index reports -1.
type Captures struct {
	haystack []byte
	slots    []int
	names    []string
}

func newCaptures(haystack []byte, slots []int, names []string) *Captures {
	return &Captures{haystack: haystack, slots: slots, names: names}
}

// Len returns the number of groups, including group 0.
func (c *Captures) Len() int {
	return len(c.slots) / 2
}

// Get returns the text of group i.
// ok is false when i is out of range or the group is unset.
func (c *Captures) Get(i int) (text []byte, ok bool) {
	start, end, ok := c.Index(i)
	if !ok {
		return nil, false
	}
	return c.haystack[start:end:end], true
}

// GetString returns the text of group i as a string.
func (c *Captures) GetString(i int) (string, bool) {
	text, ok := c.Get(i)
	return string(text), ok
}

// Index returns the byte offsets of group i, or -1, -1 when it is unset.
func (c *Captures) Index(i int) (start, end int, ok bool) {
	if i < 0 || 2*i+1 >= len(c.slots) || c.slots[2*i] < 0 {
		return -1, -1, false
	}
	return c.slots[2*i], c.slots[2*i+1], true
}

// Name returns the text of the group with the given name.
// ok is false when no group has that name or the group is unset.
func (c *Captures) Name(name string) (text []byte, ok bool) {
	if name == "" {
		return nil, false
	}
	for i, n := range c.names {
		if n == name {
			return c.Get(i)
		}
	}
	return nil, false
}

// Slots returns the raw offsets: 2i and 2i+1 are the start and end of group i.
// The slice must not be modified.
func (c *Captures) Slots() []int {
	return c.slots
}

// Expand appends template to dst with group references replaced by the
// text of c's groups, and returns the result. See Regex.Expand.
func (c *Captures) Expand(dst, template []byte) []byte {
	return expand(dst, template, c.haystack, c.slots, c.names)
}

// CapturesE returns the capture groups of the leftmost-first match in b,
// or nil. The error is a *prog.MatchError when the step budget runs out.
func (r *Regex) CapturesE(b []byte) (*Captures, error) {
	slots, err := r.engine.FindSubmatchAt(b, 0)
	if slots == nil || err != nil {
		return nil, err
	}
	return newCaptures(b, slots, r.engine.SubexpNames()), nil
}

// Captures returns the capture groups of the leftmost-first match in b,
// or nil when there is no match.
//
// Example:
//
//	re := rebound.MustCompile(`(?P<key>\w+)=(?P<value>\w+)`)
//	caps := re.Captures([]byte("a=1"))
//	v, _ := caps.Name("value") // "1"
func (r *Regex) Captures(b []byte) *Captures {
	caps, _ := r.CapturesE(b)
	return caps
}

// CapturesString is the string version of Captures.
func (r *Regex) CapturesString(s string) *Captures {
	return r.Captures([]byte(s))
}

// AllCaptures returns an iterator over the capture groups of successive
// non-overlapping matches in b.
func (r *Regex) AllCaptures(b []byte) iter.Seq[*Captures] {
	names := r.engine.SubexpNames()
	return func(yield func(*Captures) bool) {
		_ = r.allMatches(b, -1, true, func(slots []int) bool {
			return yield(newCaptures(b, slots, names))
		})
	}
}

// FindSubmatchIndex returns the offsets of the leftmost match and its groups.
// Unset groups are -1. A nil return value indicates no match.
func (r *Regex) FindSubmatchIndex(b []byte) []int {
	slots, _ := r.engine.FindSubmatchAt(b, 0)
	return slots
}

// FindStringSubmatchIndex is the string version of FindSubmatchIndex.
func (r *Regex) FindStringSubmatchIndex(s string) []int {
	return r.FindSubmatchIndex([]byte(s))
}

// FindSubmatch returns the text of the leftmost match and its groups.
// Unset groups are nil. A nil return value indicates no match.
//
// Example:
//
//	re := rebound.MustCompile(`(\w+)@(\w+)`)
//	m := re.FindSubmatch([]byte("bob@example"))
//	// m[0] = "bob@example", m[1] = "bob", m[2] = "example"
func (r *Regex) FindSubmatch(b []byte) [][]byte {
	slots := r.FindSubmatchIndex(b)
	if slots == nil {
		return nil
	}
	return groupBytes(b, slots)
}

// FindStringSubmatch is the string version of FindSubmatch.
// Unset groups are "".
func (r *Regex) FindStringSubmatch(s string) []string {
	slots := r.FindStringSubmatchIndex(s)
	if slots == nil {
		return nil
	}
	return groupStrings(s, slots)
}

// FindAllSubmatchIndex returns the group offsets of successive
// non-overlapping matches in b. If n >= 0, at most n matches are returned.
func (r *Regex) FindAllSubmatchIndex(b []byte, n int) [][]int {
	var out [][]int
	_ = r.allMatches(b, n, true, func(slots []int) bool {
		out = append(out, slots)
		return true
	})
	return out
}

// FindAllStringSubmatchIndex is the string version of FindAllSubmatchIndex.
func (r *Regex) FindAllStringSubmatchIndex(s string, n int) [][]int {
	return r.FindAllSubmatchIndex([]byte(s), n)
}

// FindAllSubmatch returns the group texts of successive non-overlapping
// matches in b. If n >= 0, at most n matches are returned.
func (r *Regex) FindAllSubmatch(b []byte, n int) [][][]byte {
	all := r.FindAllSubmatchIndex(b, n)
	if all == nil {
		return nil
	}
	out := make([][][]byte, len(all))
	for i, slots := range all {
		out[i] = groupBytes(b, slots)
	}
	return out
}

// FindAllStringSubmatch is the string version of FindAllSubmatch.
func (r *Regex) FindAllStringSubmatch(s string, n int) [][]string {
	all := r.FindAllStringSubmatchIndex(s, n)
	if all == nil {
		return nil
	}
	out := make([][]string, len(all))
	for i, slots := range all {
		out[i] = groupStrings(s, slots)
	}
	return out
}

func groupBytes(b []byte, slots []int) [][]byte {
	out := make([][]byte, len(slots)/2)
	for i := range out {
		if slots[2*i] >= 0 {
			out[i] = b[slots[2*i]:slots[2*i+1]:slots[2*i+1]]
		}
	}
	return out
}

func groupStrings(s string, slots []int) []string {
	out := make([]string, len(slots)/2)
	for i := range out {
		if slots[2*i] >= 0 {
			out[i] = s[slots[2*i]:slots[2*i+1]]
		}
	}
	return out
}
