package syntax

import "fmt"

// ErrorKind classifies parse and compile errors. Every kind is itself an
// error, so callers can test with errors.Is(err, syntax.ErrMissingParen).
type ErrorKind string

// Error implements the error interface.
func (k ErrorKind) Error() string {
	return string(k)
}

// Parse error kinds.
const (
	ErrMissingParen          ErrorKind = "missing closing )"
	ErrUnexpectedParen       ErrorKind = "unexpected )"
	ErrInvalidRepeat         ErrorKind = "invalid repeat count"
	ErrMissingRepeatArgument ErrorKind = "missing argument to repetition operator"
	ErrInvalidEscape         ErrorKind = "invalid escape sequence"
	ErrInvalidClass          ErrorKind = "invalid character class range"
	ErrMissingBracket        ErrorKind = "missing closing ]"
	ErrInvalidGroupName      ErrorKind = "invalid named capture"
	ErrDuplicateGroupName    ErrorKind = "duplicate capture group name"
	ErrInvalidFlag           ErrorKind = "invalid or unsupported flag"
	ErrInvalidBackref        ErrorKind = "invalid backreference"
	ErrTrailingBackslash     ErrorKind = "trailing backslash at end of expression"
	ErrInvalidUTF8           ErrorKind = "invalid UTF-8"
)

// Compile error kinds, reported by Analyze.
const (
	ErrRepeatTooLarge  ErrorKind = "repetition count exceeds limit"
	ErrProgramTooLarge ErrorKind = "compiled program exceeds size limit"
	ErrUnknownClass    ErrorKind = "unknown character class name"
	ErrNestingTooDeep  ErrorKind = "expression nests too deeply"
)

// ParseError describes malformed pattern syntax.
type ParseError struct {
	Kind    ErrorKind
	Pos     int    // byte offset of the offending construct
	Pattern string // full pattern text
	Expr    string // offending fragment, may be empty
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Expr != "" {
		return fmt.Sprintf("parse error at offset %d: %s: `%s`", e.Pos, e.Kind, e.Expr)
	}
	return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Kind)
}

// Unwrap returns the error kind.
func (e *ParseError) Unwrap() error {
	return e.Kind
}

// CompileError describes a syntactically valid pattern that Analyze rejects,
// either because it exceeds configured limits or because it names a class
// that cannot be resolved.
type CompileError struct {
	Kind   ErrorKind
	Pos    int
	Detail string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("compile error at offset %d: %s: %s", e.Pos, e.Kind, e.Detail)
	}
	return fmt.Sprintf("compile error at offset %d: %s", e.Pos, e.Kind)
}

// Unwrap returns the error kind.
func (e *CompileError) Unwrap() error {
	return e.Kind
}
