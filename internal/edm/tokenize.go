package edm

import "strings"

// Tokenize strips the checksum suffix from a header line and splits the
// remaining payload on commas, trimming surrounding whitespace from each
// token. The first element (the "$<tag>" prefix) is discarded; the rest are
// returned in order, preserving duplicates and empty strings.
func Tokenize(line string) []string {
	payload := line
	if idx := strings.IndexByte(line, checksumDelim); idx >= 0 {
		payload = line[:idx]
	}
	parts := strings.Split(payload, tokenDelimiter)
	tokens := make([]string, 0, len(parts)-1)
	for _, part := range parts[1:] {
		tokens = append(tokens, strings.TrimSpace(part))
	}
	return tokens
}
