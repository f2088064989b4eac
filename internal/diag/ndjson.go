package diag

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
)

// WriteNDJSON streams diagnostics to w as newline-delimited JSON records.
func WriteNDJSON(w io.Writer, diags []Diagnostic) error {
	bw := bufio.NewWriter(w)
	for _, d := range diags {
		b, err := json.Marshal(d)
		if err != nil {
			return err
		}
		if _, err := bw.Write(b); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// SaveNDJSON writes diagnostics to a file, one JSON object per line.
func SaveNDJSON(path string, diags []Diagnostic) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteNDJSON(f, diags)
}
