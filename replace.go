package rebound

import (
	"bytes"
	"strconv"
)

// Expand appends template to dst and returns the result; during the append,
// it replaces group references in template with the text of the
// corresponding group of match, taken from src. match holds the slots of one
// match, as returned by FindSubmatchIndex.
//
// In the template:
//   - $0 is the whole match, $N and ${N} are group N
//   - $name and ${name} are the named group
//   - $$ is a literal $
//
// $name takes the longest sequence of letters, digits and underscores, so
// $1x is the group named "1x"; use ${1}x for group 1 followed by x.
// References to unset, out-of-range or unknown groups expand to nothing.
// A $ that starts no valid reference is copied as is.
func (r *Regex) Expand(dst, template, src []byte, match []int) []byte {
	return expand(dst, template, src, match, r.engine.SubexpNames())
}

// ExpandString is the string version of Expand.
func (r *Regex) ExpandString(dst []byte, template, src string, match []int) []byte {
	return expand(dst, []byte(template), []byte(src), match, r.engine.SubexpNames())
}

func expand(dst, template, src []byte, match []int, names []string) []byte {
	for len(template) > 0 {
		i := bytes.IndexByte(template, '$')
		if i < 0 {
			break
		}
		dst = append(dst, template[:i]...)
		template = template[i:]
		if len(template) > 1 && template[1] == '$' {
			dst = append(dst, '$')
			template = template[2:]
			continue
		}
		name, num, rest, ok := extractRef(template)
		if !ok {
			dst = append(dst, '$')
			template = template[1:]
			continue
		}
		template = rest
		if num < 0 {
			for j, n := range names {
				if n == name && name != "" {
					num = j
					break
				}
			}
		}
		if num >= 0 && 2*num+1 < len(match) && match[2*num] >= 0 {
			dst = append(dst, src[match[2*num]:match[2*num+1]]...)
		}
	}
	return append(dst, template...)
}

// extractRef parses a $name or ${name} reference at the start of template.
// num is the group number when name is all digits, else -1.
func extractRef(template []byte) (name string, num int, rest []byte, ok bool) {
	if len(template) < 2 || template[0] != '$' {
		return "", -1, nil, false
	}
	brace := template[1] == '{'
	i := 1
	if brace {
		i = 2
	}
	j := i
	for j < len(template) && isNameByte(template[j]) {
		j++
	}
	if j == i {
		return "", -1, nil, false
	}
	name = string(template[i:j])
	if brace {
		if j >= len(template) || template[j] != '}' {
			return "", -1, nil, false
		}
		j++
	}

	num = -1
	if n, err := strconv.Atoi(name); err == nil && n >= 0 {
		num = n
	}
	return name, num, template[j:], true
}

func isNameByte(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// replace rewrites the first n matches of src (all when n < 0), appending
// to the result the output of fn for each.
func (r *Regex) replace(src []byte, n int, captures bool, fn func(dst []byte, slots []int) []byte) []byte {
	var out []byte
	last := 0
	_ = r.allMatches(src, n, captures, func(slots []int) bool {
		out = append(out, src[last:slots[0]]...)
		out = fn(out, slots)
		last = slots[1]
		return true
	})
	if out == nil && last == 0 {
		return append([]byte(nil), src...)
	}
	return append(out, src[last:]...)
}

// ReplaceAll returns a copy of src, replacing matches of the pattern with
// the replacement template repl. Group references in repl are expanded as
// in Expand.
//
// Example:
//
//	re := rebound.MustCompile(`(\w+)@(\w+)\.(\w+)`)
//	result := re.ReplaceAll([]byte("user@example.com"), []byte("$1 at ${2}"))
//	// result = []byte("user at example")
func (r *Regex) ReplaceAll(src, repl []byte) []byte {
	if bytes.IndexByte(repl, '$') < 0 {
		return r.ReplaceAllLiteral(src, repl)
	}
	names := r.engine.SubexpNames()
	return r.replace(src, -1, true, func(dst []byte, slots []int) []byte {
		return expand(dst, repl, src, slots, names)
	})
}

// ReplaceAllString is the string version of ReplaceAll.
func (r *Regex) ReplaceAllString(src, repl string) string {
	return string(r.ReplaceAll([]byte(src), []byte(repl)))
}

// Replace is ReplaceAll limited to the first match.
func (r *Regex) Replace(src, repl []byte) []byte {
	names := r.engine.SubexpNames()
	return r.replace(src, 1, true, func(dst []byte, slots []int) []byte {
		return expand(dst, repl, src, slots, names)
	})
}

// ReplaceString is the string version of Replace.
func (r *Regex) ReplaceString(src, repl string) string {
	return string(r.Replace([]byte(src), []byte(repl)))
}

// ReplaceAllLiteral returns a copy of src, replacing matches of the pattern
// with repl. The replacement is substituted directly, without expansion.
//
// Example:
//
//	re := rebound.MustCompile(`\d+`)
//	result := re.ReplaceAllLiteral([]byte("age: 42"), []byte("$1"))
//	// result = []byte("age: $1")
func (r *Regex) ReplaceAllLiteral(src, repl []byte) []byte {
	return r.replace(src, -1, false, func(dst []byte, _ []int) []byte {
		return append(dst, repl...)
	})
}

// ReplaceAllLiteralString is the string version of ReplaceAllLiteral.
func (r *Regex) ReplaceAllLiteralString(src, repl string) string {
	return string(r.ReplaceAllLiteral([]byte(src), []byte(repl)))
}

// ReplaceAllFunc returns a copy of src in which every match has been
// replaced by the return value of repl applied to the matched bytes.
// The replacement is substituted directly, without expansion.
//
// Example:
//
//	re := rebound.MustCompile(`\d+`)
//	result := re.ReplaceAllFunc([]byte("1 2 3"), func(s []byte) []byte {
//	    n, _ := strconv.Atoi(string(s))
//	    return []byte(strconv.Itoa(n * 2))
//	})
//	// result = []byte("2 4 6")
func (r *Regex) ReplaceAllFunc(src []byte, repl func([]byte) []byte) []byte {
	return r.replace(src, -1, false, func(dst []byte, slots []int) []byte {
		return append(dst, repl(src[slots[0]:slots[1]:slots[1]])...)
	})
}

// ReplaceAllStringFunc is the string version of ReplaceAllFunc.
func (r *Regex) ReplaceAllStringFunc(src string, repl func(string) string) string {
	return string(r.replace([]byte(src), -1, false, func(dst []byte, slots []int) []byte {
		return append(dst, repl(src[slots[0]:slots[1]])...)
	}))
}

// Split slices s into substrings separated by the expression and returns a
// slice of the substrings between those matches.
//
// The count determines the number of substrings to return:
//
//	n > 0: at most n substrings; the last substring will be the unsplit remainder.
//	n == 0: the result is nil (zero substrings)
//	n < 0: all substrings
//
// Example:
//
//	re := rebound.MustCompile(`a*`)
//	parts := re.Split("abaabaccadaaae", 5)
//	// parts = ["", "b", "b", "c", "cadaaae"]
func (r *Regex) Split(s string, n int) []string {
	if n == 0 {
		return nil
	}
	if len(r.pattern) > 0 && len(s) == 0 {
		return []string{""}
	}

	matches := r.FindAllStringIndex(s, n)
	out := make([]string, 0, len(matches)+1)

	beg, end := 0, 0
	for _, m := range matches {
		if n > 0 && len(out) == n-1 {
			break
		}
		end = m[0]
		if m[1] != 0 {
			out = append(out, s[beg:end])
		}
		beg = m[1]
	}
	if end != len(s) {
		out = append(out, s[beg:])
	}
	return out
}
