package edm

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

func TestHeaderEnd(t *testing.T) {
	tests := []struct {
		name    string
		buf     []byte
		want    int
		wantErr error
	}{
		{
			name: "single line then body",
			buf:  []byte("$U,N354DT*15\n\x00\x01"),
			want: 12,
		},
		{
			name: "body starting with printable byte",
			buf:  []byte("$U,N354DT*15\nBINARY"),
			want: 12,
		},
		{
			name:    "no terminator",
			buf:     []byte("$U,N354DT*15\n$A,1*02\n"),
			wantErr: ErrNoHeaderTerminator,
		},
		{
			name:    "empty buffer",
			buf:     nil,
			wantErr: ErrNoHeaderTerminator,
		},
		{
			name:    "newline is last byte",
			buf:     []byte("$U,N354DT*15\n"),
			wantErr: ErrNoHeaderTerminator,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := HeaderEnd(tc.buf)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("HeaderEnd = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("HeaderEnd returned error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("HeaderEnd = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestHeaderEndDeterministicForAnyLineCount(t *testing.T) {
	for n := 1; n <= 16; n++ {
		var buf bytes.Buffer
		for i := 0; i < n; i++ {
			fmt.Fprintf(&buf, "%s\n", headerLine(fmt.Sprintf("Z,%d", i)))
		}
		headerLen := buf.Len() - 1
		buf.WriteByte(0xFE)
		got, err := HeaderEnd(buf.Bytes())
		if err != nil {
			t.Fatalf("n=%d: HeaderEnd returned error: %v", n, err)
		}
		if got != headerLen {
			t.Fatalf("n=%d: HeaderEnd = %d, want %d", n, got, headerLen)
		}
	}
}
