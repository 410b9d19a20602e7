package syntax

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxParseDepth bounds group nesting so the recursive-descent parser cannot
// exhaust the goroutine stack.
const maxParseDepth = 1000

// maxRepeatLiteral bounds the numbers accepted inside {m,n}. Tighter limits
// are applied by Analyze.
const maxRepeatLiteral = 1_000_000

type parser struct {
	pattern  string
	pos      int
	flags    Flags
	depth    int
	ncap     int
	names    map[string]int
	backrefs []*Node
}

// Parse parses pattern under the initial flags and returns the syntax tree.
//
// Capture groups are numbered from 1 in order of their opening parenthesis.
// Backreferences may refer to groups defined later in the pattern; they are
// validated once the whole pattern has been read.
func Parse(pattern string, flags Flags) (*Node, error) {
	if !utf8.ValidString(pattern) {
		pos := 0
		for pos < len(pattern) {
			r, w := utf8.DecodeRuneInString(pattern[pos:])
			if r == utf8.RuneError && w == 1 {
				break
			}
			pos += w
		}
		return nil, &ParseError{Kind: ErrInvalidUTF8, Pos: pos, Pattern: pattern}
	}
	p := &parser{
		pattern: pattern,
		flags:   flags,
		names:   make(map[string]int),
	}
	root, err := p.parseAlternation()
	if err != nil {
		return nil, err
	}
	if p.more() {
		// parseAlternation only stops early on ')'.
		return nil, p.errorAt(ErrUnexpectedParen, p.pos, ")")
	}
	if err := p.resolveBackrefs(); err != nil {
		return nil, err
	}
	return root, nil
}

// CaptureNames returns the group names of a parsed tree indexed by capture
// number. Index 0 is the whole match and always "".
func CaptureNames(root *Node) []string {
	highest := 0
	Walk(root, func(n *Node) bool {
		if n.Op == OpGroup && n.Cap > highest {
			highest = n.Cap
		}
		return true
	})
	names := make([]string, highest+1)
	Walk(root, func(n *Node) bool {
		if n.Op == OpGroup && n.Cap > 0 {
			names[n.Cap] = n.Name
		}
		return true
	})
	return names
}

func (p *parser) more() bool {
	return p.pos < len(p.pattern)
}

func (p *parser) peek() rune {
	r, _ := utf8.DecodeRuneInString(p.pattern[p.pos:])
	return r
}

func (p *parser) next() rune {
	r, w := utf8.DecodeRuneInString(p.pattern[p.pos:])
	p.pos += w
	return r
}

func (p *parser) rest() string {
	return p.pattern[p.pos:]
}

func (p *parser) errorAt(kind ErrorKind, pos int, expr string) *ParseError {
	return &ParseError{Kind: kind, Pos: pos, Pattern: p.pattern, Expr: expr}
}

func (p *parser) parseAlternation() (*Node, error) {
	start := p.pos
	var alts []*Node
	for {
		c, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		alts = append(alts, c)
		if p.more() && p.peek() == '|' {
			p.pos++
			continue
		}
		break
	}
	if len(alts) == 1 {
		return alts[0], nil
	}
	return &Node{Op: OpAlternate, Subs: alts, Pos: start}, nil
}

func (p *parser) parseConcat() (*Node, error) {
	start := p.pos
	var items []*Node
	for p.more() {
		c := p.peek()
		if c == '|' || c == ')' {
			break
		}
		atom, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		if atom == nil {
			// Flag-only group such as (?i).
			continue
		}
		atom, err = p.parseQuantifiers(atom)
		if err != nil {
			return nil, err
		}
		items = append(items, atom)
	}
	switch len(items) {
	case 0:
		return &Node{Op: OpEmpty, Pos: start}, nil
	case 1:
		return items[0], nil
	}
	return &Node{Op: OpConcat, Subs: items, Pos: start}, nil
}

func (p *parser) parseQuantifiers(atom *Node) (*Node, error) {
	quantified := false
	lastQ := p.pos
	for p.more() {
		qpos := p.pos
		var lo, hi int
		switch p.peek() {
		case '*':
			lo, hi = 0, -1
			p.pos++
		case '+':
			lo, hi = 1, -1
			p.pos++
		case '?':
			lo, hi = 0, 1
			p.pos++
		case '{':
			var ok bool
			var err error
			lo, hi, ok, err = p.parseRepeatBraces()
			if err != nil {
				return nil, err
			}
			if !ok {
				return atom, nil
			}
		default:
			return atom, nil
		}
		if quantified {
			return nil, p.errorAt(ErrInvalidRepeat, lastQ, p.pattern[lastQ:p.pos])
		}
		greedy := true
		if p.more() && p.peek() == '?' {
			p.pos++
			greedy = false
		}
		if p.flags&NonGreedy != 0 {
			greedy = !greedy
		}
		atom = &Node{
			Op:     OpRepeat,
			Subs:   []*Node{atom},
			Min:    lo,
			Max:    hi,
			Greedy: greedy,
			Pos:    atom.Pos,
		}
		quantified = true
		lastQ = qpos
	}
	return atom, nil
}

// parseRepeatBraces parses {n}, {n,} or {n,m} at the current position.
// ok is false when the text is not a repeat, in which case '{' is a literal
// and the position is unchanged.
func (p *parser) parseRepeatBraces() (lo, hi int, ok bool, err error) {
	start := p.pos
	s := p.rest()
	i := 1
	readNum := func() (int, bool) {
		j := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == j {
			return 0, false
		}
		if i-j > 7 {
			return maxRepeatLiteral + 1, true
		}
		n, _ := strconv.Atoi(s[j:i])
		return n, true
	}
	lo, okLo := readNum()
	if !okLo {
		return 0, 0, false, nil
	}
	hi = lo
	if i < len(s) && s[i] == ',' {
		i++
		if i < len(s) && s[i] == '}' {
			hi = -1
		} else {
			var okHi bool
			hi, okHi = readNum()
			if !okHi {
				return 0, 0, false, nil
			}
		}
	}
	if i >= len(s) || s[i] != '}' {
		return 0, 0, false, nil
	}
	i++
	expr := s[:i]
	p.pos = start + i
	if lo > maxRepeatLiteral || hi > maxRepeatLiteral || (hi >= 0 && lo > hi) {
		return 0, 0, false, p.errorAt(ErrInvalidRepeat, start, expr)
	}
	return lo, hi, true, nil
}

// looksLikeRepeat reports whether the text at the current position is a
// well-formed {n,m} repeat, without consuming it.
func (p *parser) looksLikeRepeat() bool {
	save := p.pos
	_, _, ok, err := p.parseRepeatBraces()
	p.pos = save
	return ok || err != nil
}

func (p *parser) parseAtom() (*Node, error) {
	pos := p.pos
	c := p.peek()
	switch c {
	case '(':
		return p.parseGroup()
	case '[':
		return p.parseClass()
	case '.':
		p.pos++
		if p.flags&DotNL != 0 {
			return &Node{Op: OpAnyChar, Pos: pos}, nil
		}
		return &Node{Op: OpAnyCharNotNL, Pos: pos}, nil
	case '^':
		p.pos++
		if p.flags&MultiLine != 0 {
			return &Node{Op: OpAnchor, Anchor: AnchorStartLine, Pos: pos}, nil
		}
		return &Node{Op: OpAnchor, Anchor: AnchorStartText, Pos: pos}, nil
	case '$':
		p.pos++
		if p.flags&MultiLine != 0 {
			return &Node{Op: OpAnchor, Anchor: AnchorEndLine, Pos: pos}, nil
		}
		return &Node{Op: OpAnchor, Anchor: AnchorEndText, Pos: pos}, nil
	case '\\':
		return p.parseEscapeAtom()
	case '*', '+', '?':
		return nil, p.errorAt(ErrMissingRepeatArgument, pos, string(c))
	case '{':
		if p.looksLikeRepeat() {
			return nil, p.errorAt(ErrMissingRepeatArgument, pos, "{")
		}
	}
	p.next()
	return p.literal(c, pos), nil
}

func (p *parser) literal(r rune, pos int) *Node {
	fold := p.flags&FoldCase != 0 && unicode.SimpleFold(r) != r
	return &Node{Op: OpLiteral, Rune: r, Fold: fold, Pos: pos}
}

func (p *parser) parseGroup() (*Node, error) {
	start := p.pos
	p.pos++ // (
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxParseDepth {
		return nil, p.errorAt(ErrNestingTooDeep, start, "")
	}

	saved := p.flags
	capIndex := 0
	name := ""
	rest := p.rest()
	switch {
	case strings.HasPrefix(rest, "?P<") || (strings.HasPrefix(rest, "?<") &&
		!strings.HasPrefix(rest, "?<=") && !strings.HasPrefix(rest, "?<!")):
		if rest[1] == 'P' {
			p.pos += 3
		} else {
			p.pos += 2
		}
		end := strings.IndexByte(p.rest(), '>')
		if end < 0 {
			return nil, p.errorAt(ErrInvalidGroupName, start, p.pattern[start:])
		}
		name = p.rest()[:end]
		if !isValidGroupName(name) {
			return nil, p.errorAt(ErrInvalidGroupName, start, p.pattern[start:p.pos+end+1])
		}
		if _, dup := p.names[name]; dup {
			return nil, p.errorAt(ErrDuplicateGroupName, start, p.pattern[start:p.pos+end+1])
		}
		p.pos += end + 1
		p.ncap++
		capIndex = p.ncap
		p.names[name] = capIndex
	case strings.HasPrefix(rest, "?"):
		p.pos++
		scoped, err := p.parseFlags(start)
		if err != nil {
			return nil, err
		}
		if !scoped {
			// (?flags) applies to the rest of the enclosing group.
			return nil, nil
		}
	default:
		p.ncap++
		capIndex = p.ncap
	}

	sub, err := p.parseAlternation()
	if err != nil {
		return nil, err
	}
	if !p.more() || p.peek() != ')' {
		return nil, p.errorAt(ErrMissingParen, start, p.pattern[start:])
	}
	p.pos++
	p.flags = saved
	return &Node{Op: OpGroup, Cap: capIndex, Name: name, Subs: []*Node{sub}, Pos: start}, nil
}

// parseFlags parses the body of (?flags) or (?flags: after the '?'.
// It reports whether the group is scoped (followed by ':').
func (p *parser) parseFlags(start int) (scoped bool, err error) {
	flags := p.flags
	negate := false
	sawFlag := false
	for p.more() {
		c := p.next()
		switch c {
		case 'i', 'm', 's', 'U':
			var f Flags
			switch c {
			case 'i':
				f = FoldCase
			case 'm':
				f = MultiLine
			case 's':
				f = DotNL
			case 'U':
				f = NonGreedy
			}
			if negate {
				flags &^= f
			} else {
				flags |= f
			}
			sawFlag = true
		case '-':
			if negate {
				return false, p.errorAt(ErrInvalidFlag, start, p.pattern[start:p.pos])
			}
			negate = true
			sawFlag = false
		case ':':
			if negate && !sawFlag {
				return false, p.errorAt(ErrInvalidFlag, start, p.pattern[start:p.pos])
			}
			p.flags = flags
			return true, nil
		case ')':
			if !sawFlag {
				return false, p.errorAt(ErrInvalidFlag, start, p.pattern[start:p.pos])
			}
			p.flags = flags
			return false, nil
		default:
			return false, p.errorAt(ErrInvalidFlag, start, p.pattern[start:p.pos])
		}
	}
	return false, p.errorAt(ErrMissingParen, start, p.pattern[start:])
}

func isValidGroupName(name string) bool {
	if name == "" {
		return false
	}
	for _, c := range name {
		if c != '_' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			return false
		}
	}
	return true
}

func (p *parser) parseEscapeAtom() (*Node, error) {
	start := p.pos
	p.pos++ // backslash
	if !p.more() {
		return nil, p.errorAt(ErrTrailingBackslash, start, "")
	}
	c := p.next()
	switch c {
	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		digitsStart := p.pos - 1
		for p.more() && p.peek() >= '0' && p.peek() <= '9' {
			p.pos++
		}
		digits := p.pattern[digitsStart:p.pos]
		n := maxRepeatLiteral
		if len(digits) <= 6 {
			n, _ = strconv.Atoi(digits)
		}
		br := &Node{Op: OpBackref, Cap: n, Name: "", Fold: p.flags&FoldCase != 0, Pos: start}
		p.backrefs = append(p.backrefs, br)
		return br, nil
	case 'k':
		if !p.more() || p.peek() != '<' {
			return nil, p.errorAt(ErrInvalidEscape, start, p.pattern[start:p.pos])
		}
		p.pos++
		end := strings.IndexByte(p.rest(), '>')
		if end < 0 {
			return nil, p.errorAt(ErrInvalidBackref, start, p.pattern[start:])
		}
		name := p.rest()[:end]
		p.pos += end + 1
		if !isValidGroupName(name) {
			return nil, p.errorAt(ErrInvalidBackref, start, p.pattern[start:p.pos])
		}
		br := &Node{Op: OpBackref, Name: name, Fold: p.flags&FoldCase != 0, Pos: start}
		p.backrefs = append(p.backrefs, br)
		return br, nil
	case 'A':
		return &Node{Op: OpAnchor, Anchor: AnchorStartText, Pos: start}, nil
	case 'z':
		return &Node{Op: OpAnchor, Anchor: AnchorEndText, Pos: start}, nil
	case 'b':
		return &Node{Op: OpAnchor, Anchor: AnchorWordBoundary, Pos: start}, nil
	case 'B':
		return &Node{Op: OpAnchor, Anchor: AnchorNotWordBoundary, Pos: start}, nil
	case 'Q':
		return p.parseQuoted(start), nil
	case 'd', 'D', 'w', 'W', 's', 'S':
		n := &Node{Op: OpClass, Fold: p.flags&FoldCase != 0, Pos: start}
		n.Class = append(n.Class, perlClass(c)...)
		n.Negated = unicode.IsUpper(c)
		return n, nil
	case 'p', 'P':
		prop, err := p.parseProp(c, start)
		if err != nil {
			return nil, err
		}
		return &Node{Op: OpClass, Props: []ClassProp{prop}, Fold: p.flags&FoldCase != 0, Pos: start}, nil
	}
	r, err := p.escapeRune(c, start)
	if err != nil {
		return nil, err
	}
	return p.literal(r, start), nil
}

func perlClass(c rune) []RuneRange {
	switch unicode.ToLower(c) {
	case 'd':
		return perlDigit
	case 'w':
		return perlWord
	default:
		return perlSpace
	}
}

// parseQuoted handles \Q...\E, which may run to the end of the pattern.
func (p *parser) parseQuoted(start int) *Node {
	text := p.rest()
	if end := strings.Index(text, `\E`); end >= 0 {
		text = text[:end]
		p.pos += end + 2
	} else {
		p.pos = len(p.pattern)
	}
	var lits []*Node
	off := start + 2
	for _, r := range text {
		lits = append(lits, p.literal(r, off))
		off += utf8.RuneLen(r)
	}
	switch len(lits) {
	case 0:
		return &Node{Op: OpEmpty, Pos: start}
	case 1:
		return lits[0]
	}
	return &Node{Op: OpGroup, Subs: []*Node{{Op: OpConcat, Subs: lits, Pos: start}}, Pos: start}
}

// escapeRune decodes a single-rune escape whose letter c has been consumed.
func (p *parser) escapeRune(c rune, start int) (rune, error) {
	switch c {
	case 't':
		return '\t', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 'f':
		return '\f', nil
	case 'v':
		return '\v', nil
	case 'a':
		return '\a', nil
	case 'e':
		return 0x1b, nil
	case '0':
		v := rune(0)
		for i := 0; i < 2 && p.more() && p.peek() >= '0' && p.peek() <= '7'; i++ {
			v = v*8 + p.next() - '0'
		}
		return v, nil
	case 'x':
		return p.parseHex(start)
	}
	if c < utf8.RuneSelf && !isAlnum(c) {
		return c, nil
	}
	return 0, p.errorAt(ErrInvalidEscape, start, p.pattern[start:p.pos])
}

func (p *parser) parseHex(start int) (rune, error) {
	if !p.more() {
		return 0, p.errorAt(ErrInvalidEscape, start, p.pattern[start:p.pos])
	}
	if p.peek() == '{' {
		p.pos++
		end := strings.IndexByte(p.rest(), '}')
		if end <= 0 || end > 8 {
			return 0, p.errorAt(ErrInvalidEscape, start, p.pattern[start:min(len(p.pattern), p.pos+max(end, 0)+1)])
		}
		v, err := strconv.ParseUint(p.rest()[:end], 16, 32)
		p.pos += end + 1
		if err != nil || v > MaxRune {
			return 0, p.errorAt(ErrInvalidEscape, start, p.pattern[start:p.pos])
		}
		return rune(v), nil
	}
	if len(p.rest()) < 2 {
		return 0, p.errorAt(ErrInvalidEscape, start, p.pattern[start:])
	}
	v, err := strconv.ParseUint(p.rest()[:2], 16, 8)
	if err != nil {
		return 0, p.errorAt(ErrInvalidEscape, start, p.pattern[start:p.pos+2])
	}
	p.pos += 2
	return rune(v), nil
}

func isAlnum(c rune) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

// parseProp parses the name after \p or \P.
func (p *parser) parseProp(c rune, start int) (ClassProp, error) {
	prop := ClassProp{Negated: c == 'P', Pos: start}
	if !p.more() {
		return prop, p.errorAt(ErrInvalidEscape, start, p.pattern[start:])
	}
	if p.peek() != '{' {
		r := p.next()
		prop.Name = string(r)
		return prop, nil
	}
	p.pos++
	end := strings.IndexByte(p.rest(), '}')
	if end < 0 {
		return prop, p.errorAt(ErrInvalidEscape, start, p.pattern[start:])
	}
	name := p.rest()[:end]
	p.pos += end + 1
	if strings.HasPrefix(name, "^") {
		prop.Negated = !prop.Negated
		name = name[1:]
	}
	if name == "" {
		return prop, p.errorAt(ErrInvalidEscape, start, p.pattern[start:p.pos])
	}
	prop.Name = name
	return prop, nil
}

func (p *parser) parseClass() (*Node, error) {
	start := p.pos
	p.pos++ // [
	n := &Node{Op: OpClass, Fold: p.flags&FoldCase != 0, Pos: start}
	if p.more() && p.peek() == '^' {
		n.Negated = true
		p.pos++
	}
	first := true
	for {
		if !p.more() {
			return nil, p.errorAt(ErrMissingBracket, start, p.pattern[start:])
		}
		c := p.peek()
		if c == ']' && !first {
			p.pos++
			break
		}
		first = false

		if strings.HasPrefix(p.rest(), "[:") {
			if end := strings.Index(p.rest()[2:], ":]"); end >= 0 {
				itemStart := p.pos
				name := p.rest()[2 : 2+end]
				neg := strings.HasPrefix(name, "^")
				if neg {
					name = name[1:]
				}
				rs, ok := posixClasses[name]
				p.pos += end + 4
				if !ok {
					return nil, p.errorAt(ErrInvalidClass, itemStart, p.pattern[itemStart:p.pos])
				}
				if neg {
					rs = NegateRanges(rs)
				}
				n.Class = append(n.Class, rs...)
				continue
			}
		}

		itemStart := p.pos
		lo, handled, err := p.parseClassItem(n)
		if err != nil {
			return nil, err
		}
		if handled {
			continue
		}
		hi := lo
		if strings.HasPrefix(p.rest(), "-") && len(p.rest()) > 1 && p.rest()[1] != ']' {
			p.pos++
			var h rune
			h, handled, err = p.parseClassItem(nil)
			if err != nil {
				return nil, err
			}
			if handled {
				return nil, p.errorAt(ErrInvalidClass, itemStart, p.pattern[itemStart:p.pos])
			}
			hi = h
			if hi < lo {
				return nil, p.errorAt(ErrInvalidClass, itemStart, p.pattern[itemStart:p.pos])
			}
		}
		n.Class = append(n.Class, RuneRange{lo, hi})
	}
	n.Class = CanonicalizeRanges(n.Class)
	return n, nil
}

// parseClassItem reads one class member. When the member is a Perl or
// Unicode class escape it is added to n and handled is true; n is nil when
// such escapes are not allowed (range endpoints).
func (p *parser) parseClassItem(n *Node) (r rune, handled bool, err error) {
	start := p.pos
	c := p.next()
	if c != '\\' {
		return c, false, nil
	}
	if !p.more() {
		return 0, false, p.errorAt(ErrTrailingBackslash, start, "")
	}
	c = p.next()
	switch c {
	case 'd', 'D', 'w', 'W', 's', 'S':
		if n == nil {
			return 0, true, nil
		}
		rs := perlClass(c)
		if unicode.IsUpper(c) {
			rs = NegateRanges(rs)
		}
		n.Class = append(n.Class, rs...)
		return 0, true, nil
	case 'p', 'P':
		prop, err := p.parseProp(c, start)
		if err != nil {
			return 0, false, err
		}
		if n == nil {
			return 0, true, nil
		}
		n.Props = append(n.Props, prop)
		return 0, true, nil
	}
	r, err = p.escapeRune(c, start)
	return r, false, err
}

// resolveBackrefs validates every backreference once all groups are known.
// A multi-digit reference such as \12 with fewer than 12 groups is read as
// the longest valid group number followed by literal digits.
func (p *parser) resolveBackrefs() error {
	for _, br := range p.backrefs {
		if br.Name != "" {
			idx, ok := p.names[br.Name]
			if !ok {
				return p.errorAt(ErrInvalidBackref, br.Pos, `\k<`+br.Name+`>`)
			}
			br.Cap = idx
			continue
		}
		if br.Cap <= p.ncap {
			continue
		}
		digits := strconv.Itoa(br.Cap)
		if br.Cap >= maxRepeatLiteral {
			digits = p.pattern[br.Pos+1:]
			for i, c := range digits {
				if c < '0' || c > '9' {
					digits = digits[:i]
					break
				}
			}
		}
		k := len(digits) - 1
		for ; k > 0; k-- {
			v, _ := strconv.Atoi(digits[:k])
			if v <= p.ncap {
				break
			}
		}
		if k == 0 {
			return p.errorAt(ErrInvalidBackref, br.Pos, `\`+digits)
		}
		v, _ := strconv.Atoi(digits[:k])
		ref := &Node{Op: OpBackref, Cap: v, Fold: br.Fold, Pos: br.Pos}
		subs := []*Node{ref}
		off := br.Pos + 1 + k
		for _, d := range digits[k:] {
			subs = append(subs, &Node{Op: OpLiteral, Rune: d, Pos: off})
			off++
		}
		*br = Node{Op: OpGroup, Subs: []*Node{{Op: OpConcat, Subs: subs, Pos: br.Pos}}, Pos: br.Pos}
	}
	return nil
}
