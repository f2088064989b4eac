package edm

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{
			name: "registration",
			line: "$U,N354DT*15",
			want: []string{"N354DT"},
		},
		{
			name: "trims surrounding whitespace",
			line: "$A, 135 ,115,  35*00",
			want: []string{"135", "115", "35"},
		},
		{
			name: "preserves duplicates and empties",
			line: "$A,1,,1,*00",
			want: []string{"1", "", "1", ""},
		},
		{
			name: "tag only",
			line: "$D*44",
			want: []string{},
		},
		{
			name: "no checksum suffix still tokenizes",
			line: "$U,N12345",
			want: []string{"N12345"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Tokenize(tc.line)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Tokenize(%q) = %#v, want %#v", tc.line, got, tc.want)
			}
		})
	}
}
