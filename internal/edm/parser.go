package edm

import (
	"errors"
	"os"
	"strings"
)

// Options configures a Decoder.
type Options struct {
	// Strict aborts the decode on the first per-line failure (checksum
	// mismatch, malformed line, truncated or unparseable alarm tokens)
	// instead of recording it and continuing.
	Strict bool
}

// Result is the outcome of a successful (possibly partial) decode.
type Result struct {
	Header HeaderRecord
	// BodyOffset is the offset of the first byte of the binary body that
	// follows the header region. The body itself is opaque to this package.
	BodyOffset int
	// Lines is the number of header lines processed.
	Lines int
	// Issues lists the per-line failures observed during a lenient decode,
	// in line order. A strict decode never returns issues; the first one
	// becomes the terminal error.
	Issues []*LineError
}

// Decoder drives header lines through checksum validation, tokenization and
// the tag decoder table, assembling one HeaderRecord per buffer.
type Decoder struct {
	opts  Options
	table map[byte]DecodeFunc
}

// NewDecoder returns a Decoder with the default tag table (registration and
// alarms) registered.
func NewDecoder(opts Options) *Decoder {
	return &Decoder{opts: opts, table: defaultDecoders()}
}

// Register wires a decoder for the given line tag, replacing any existing
// entry. It allows future tags (fuel settings, sensor inventory) to be added
// without touching the dispatch logic.
func (d *Decoder) Register(tag byte, fn DecodeFunc) {
	d.table[tag] = fn
}

// Decode parses the header region of buf and returns the assembled record.
// Boundary and encoding failures are fatal; per-line failures are fatal only
// in strict mode. Later lines with the same tag overwrite earlier decodes.
func (d *Decoder) Decode(buf []byte) (*Result, error) {
	term, err := HeaderEnd(buf)
	if err != nil {
		return nil, err
	}
	header := buf[:term]
	for _, b := range header {
		if b >= 0x80 {
			return nil, ErrInvalidEncoding
		}
	}

	res := &Result{BodyOffset: term + 1}
	offset := 0
	for lineNo, raw := range strings.Split(string(header), "\n") {
		lineOffset := offset
		offset += len(raw) + 1
		res.Lines++
		line := strings.TrimSuffix(raw, "\r")

		if len(line) < 2 {
			le := &LineError{Line: lineNo + 1, Offset: int64(lineOffset), Err: ErrEmptyTagLine}
			if err := d.record(res, le); err != nil {
				return nil, err
			}
			continue
		}
		tag := line[1]
		if err := VerifyChecksum(line); err != nil {
			le := &LineError{Line: lineNo + 1, Offset: int64(lineOffset), Tag: tag, Err: err}
			if err := d.record(res, le); err != nil {
				return nil, err
			}
			continue
		}
		fn, ok := d.table[tag]
		if !ok {
			// Unknown tags are well-formed but carry no decoded fields.
			continue
		}
		if err := fn(&res.Header, Tokenize(line)); err != nil {
			le := &LineError{Line: lineNo + 1, Offset: int64(lineOffset), Tag: tag, Err: err}
			var te *tokenError
			if errors.As(err, &te) {
				le.Token = te.token
			}
			if err := d.record(res, le); err != nil {
				return nil, err
			}
		}
	}
	return res, nil
}

// record either appends the issue (lenient) or promotes it to a terminal
// error (strict). Token-count shortfalls on optional single-field tags are
// informational and never abort.
func (d *Decoder) record(res *Result, le *LineError) error {
	if d.opts.Strict && !errors.Is(le.Err, ErrUnexpectedTokenCount) {
		return le
	}
	res.Issues = append(res.Issues, le)
	return nil
}

// Decode parses buf with default (lenient) options.
func Decode(buf []byte) (*Result, error) {
	return NewDecoder(Options{}).Decode(buf)
}

// DecodeFile reads path into memory and decodes its header region.
func (d *Decoder) DecodeFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return d.Decode(data)
}

// DecodeFile decodes the file at path with default options.
func DecodeFile(path string) (*Result, error) {
	return NewDecoder(Options{}).DecodeFile(path)
}
