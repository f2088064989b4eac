package edm

import (
	"errors"
	"fmt"
)

var (
	// ErrNoHeaderTerminator is returned when no newline followed by a
	// non-'$' byte exists before the end of the buffer.
	ErrNoHeaderTerminator = errors.New("no header terminator before end of buffer")
	// ErrInvalidEncoding is returned when the header region is not valid text.
	ErrInvalidEncoding = errors.New("header region is not valid ASCII text")

	ErrMissingChecksumDelimiter = errors.New("header line has no '*' checksum delimiter")
	ErrInvalidChecksumDigits    = errors.New("checksum suffix is not two hex digits")
	ErrChecksumMismatch         = errors.New("computed checksum does not match declared checksum")
	ErrUnparseableNumericToken  = errors.New("numeric field token failed to parse")
	ErrEmptyTagLine             = errors.New("header line too short to carry a tag")

	// ErrTruncatedAlarmLine marks an alarm line with fewer than eight
	// tokens. Lenient decodes leave the alarms unset and continue; strict
	// decodes abort.
	ErrTruncatedAlarmLine = errors.New("alarm line has fewer than eight tokens")
	// ErrUnexpectedTokenCount marks a token-count shortfall that is never
	// fatal, in either mode; the owning field is simply left unset.
	ErrUnexpectedTokenCount = errors.New("unexpected token count for tag")
)

// tokenError carries the offending token alongside the underlying failure so
// the aggregator can surface it in diagnostics.
type tokenError struct {
	token string
	err   error
}

func (e *tokenError) Error() string {
	return fmt.Sprintf("token %q: %v", e.token, e.err)
}

func (e *tokenError) Unwrap() error {
	return e.err
}

// LineError wraps a per-line decode failure with enough context to build a
// diagnostic: zero-based line index, byte offset of the line start, the line
// tag and, where relevant, the offending token.
type LineError struct {
	Line   int
	Offset int64
	Tag    byte
	Token  string
	Err    error
}

func (e *LineError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("line %d (offset %d, tag %q): token %q: %v", e.Line, e.Offset, string(e.Tag), e.Token, e.Err)
	}
	if e.Tag != 0 {
		return fmt.Sprintf("line %d (offset %d, tag %q): %v", e.Line, e.Offset, string(e.Tag), e.Err)
	}
	return fmt.Sprintf("line %d (offset %d): %v", e.Line, e.Offset, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
