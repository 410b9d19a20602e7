package nfa

// ByteClasses maps each byte to an equivalence class. Bytes share a class
// when no transition or assertion in the NFA tells them apart, so the lazy
// DFA only needs one table column per class. For [a-z]+ there are three:
// 0x00-0x60, a-z and 0x7b-0xff.
type ByteClasses struct {
	of [256]uint8
	n  int
}

// SingletonByteClasses gives every byte a class of its own.
func SingletonByteClasses() ByteClasses {
	var bc ByteClasses
	for b := range bc.of {
		bc.of[b] = uint8(b)
	}
	bc.n = 256
	return bc
}

func (bc *ByteClasses) Get(b byte) byte { return bc.of[b] }

// AlphabetLen is the number of classes, never zero.
func (bc *ByteClasses) AlphabetLen() int { return max(bc.n, 1) }

// Representatives lists one byte per class, the lowest, ordered by class.
func (bc *ByteClasses) Representatives() []byte {
	reps := make([]byte, 0, bc.AlphabetLen())
	for b := 0; b < 256; b++ {
		if b == 0 || bc.of[b] != bc.of[b-1] {
			reps = append(reps, byte(b))
		}
	}
	return reps
}

// ByteClassSet records class boundaries as states are added: a set bit at
// i separates byte i from byte i+1.
type ByteClassSet struct {
	cuts [4]uint64
}

func NewByteClassSet() *ByteClassSet { return new(ByteClassSet) }

// SetRange separates [lo, hi] from the bytes on either side of it.
func (s *ByteClassSet) SetRange(lo, hi byte) {
	if lo > 0 {
		s.cut(lo - 1)
	}
	s.cut(hi)
}

func (s *ByteClassSet) SetByte(b byte) { s.SetRange(b, b) }

func (s *ByteClassSet) cut(b byte) { s.cuts[b>>6] |= 1 << (b & 63) }

// ByteClasses assigns class numbers in byte order.
func (s *ByteClassSet) ByteClasses() ByteClasses {
	var bc ByteClasses
	var class uint8
	for b := 0; b < 256; b++ {
		bc.of[b] = class
		if s.cuts[b>>6]&(1<<(b&63)) != 0 && b < 255 {
			class++
		}
	}
	bc.n = int(class) + 1
	return bc
}
