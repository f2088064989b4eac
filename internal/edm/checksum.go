package edm

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	lineStart      = byte('$')
	checksumDelim  = byte('*')
	tokenDelimiter = ","
)

// splitChecksum divides a header line at the first '*' into the payload and
// the trailing checksum text.
func splitChecksum(line string) (payload, suffix string, err error) {
	idx := strings.IndexByte(line, checksumDelim)
	if idx < 0 {
		return "", "", ErrMissingChecksumDelimiter
	}
	return line[:idx], line[idx+1:], nil
}

// computeChecksum XORs every payload byte after the leading '$'.
func computeChecksum(payload string) byte {
	var sum byte
	for i := 1; i < len(payload); i++ {
		sum ^= payload[i]
	}
	return sum
}

// VerifyChecksum validates the embedded integrity checksum of one header
// line. The line must contain a '*' followed by exactly two hex digits whose
// value equals the XOR of the payload bytes between the leading '$' and the
// '*'.
func VerifyChecksum(line string) error {
	payload, suffix, err := splitChecksum(line)
	if err != nil {
		return err
	}
	if len(suffix) != 2 {
		return fmt.Errorf("%w: %q", ErrInvalidChecksumDigits, suffix)
	}
	declared, err := strconv.ParseUint(suffix, 16, 8)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidChecksumDigits, suffix)
	}
	if computed := computeChecksum(payload); computed != byte(declared) {
		return fmt.Errorf("%w: computed %02X, declared %02X", ErrChecksumMismatch, computed, declared)
	}
	return nil
}
