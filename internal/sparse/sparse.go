// Package sparse provides the sparse set used to deduplicate automaton
// states during PikeVM steps and DFA determinization.
package sparse

// SparseSet is a set of uint32 values below a fixed capacity with O(1)
// insert, membership and clear. Values iterate in insertion order, which the
// PikeVM relies on for thread priority.
type SparseSet struct {
	sparse []uint32 // value -> index in dense
	dense  []uint32
}

// NewSparseSet creates a set that can hold values in [0, capacity).
func NewSparseSet(capacity uint32) *SparseSet {
	return &SparseSet{
		sparse: make([]uint32, capacity),
		dense:  make([]uint32, 0, capacity),
	}
}

// Capacity returns the exclusive upper bound on values.
func (s *SparseSet) Capacity() int {
	return len(s.sparse)
}

// Resize clears the set and changes its capacity.
func (s *SparseSet) Resize(capacity uint32) {
	if int(capacity) <= cap(s.sparse) {
		s.sparse = s.sparse[:capacity]
	} else {
		s.sparse = make([]uint32, capacity)
	}
	if int(capacity) > cap(s.dense) {
		s.dense = make([]uint32, 0, capacity)
	}
	s.Clear()
}

// Insert adds value and reports whether it was absent.
// Panics if value >= capacity.
func (s *SparseSet) Insert(value uint32) bool {
	if s.Contains(value) {
		return false
	}
	//nolint:gosec // G115: len(dense) < capacity, which fits in uint32
	s.sparse[value] = uint32(len(s.dense))
	s.dense = append(s.dense, value)
	return true
}

// Contains returns true if the value is in the set
func (s *SparseSet) Contains(value uint32) bool {
	if int(value) >= len(s.sparse) {
		return false
	}
	idx := s.sparse[value]
	return int(idx) < len(s.dense) && s.dense[idx] == value
}

// Clear removes all elements from the set in O(1) time
func (s *SparseSet) Clear() {
	s.dense = s.dense[:0]
}

// Size returns the number of elements in the set
func (s *SparseSet) Size() int {
	return len(s.dense)
}

// IsEmpty returns true if the set contains no elements
func (s *SparseSet) IsEmpty() bool {
	return len(s.dense) == 0
}

// Values returns the elements in insertion order. The slice is valid until
// the next mutation.
func (s *SparseSet) Values() []uint32 {
	return s.dense
}
