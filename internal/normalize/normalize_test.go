package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLines(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "empty input",
			raw:  "",
			want: nil,
		},
		{
			name: "whitespace only",
			raw:  "   \n\t\n  \n",
			want: nil,
		},
		{
			name: "trims and drops empties preserving order",
			raw:  "  Acme Mart  \n\n   01/15/2024\nTotal: 8.64  \n",
			want: []string{"Acme Mart", "01/15/2024", "Total: 8.64"},
		},
		{
			name: "windows line endings",
			raw:  "Store\r\nTotal: 1.00\r\n",
			want: []string{"Store", "Total: 1.00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Lines(tt.raw))
		})
	}
}

func TestCleanup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "empty passthrough",
			in:   "",
			want: "",
		},
		{
			name: "crlf and tabs",
			in:   "Store\r\nItem\t4.50\r\n",
			want: "Store\nItem  4.50",
		},
		{
			name: "collapses blank runs and trailing spaces",
			in:   "Store   \n\n\n\n\nTotal: 5.00",
			want: "Store\n\nTotal: 5.00",
		},
		{
			name: "drops separator rulers",
			in:   "Store\n----------\nTotal: 5.00",
			want: "Store\n\nTotal: 5.00",
		},
		{
			name: "keeps digits untouched",
			in:   "01/15/2024 0.64",
			want: "01/15/2024 0.64",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Cleanup(tt.in))
		})
	}
}
