package debug

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
)

func TestPrintLine(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	tests := []struct {
		name   string
		params PrintLineParams
		want   string
	}{
		{
			name:   "client line",
			params: PrintLineParams{ServerName: "GALACTIC", Client: "#1", ClientLine: true, Line: "a b 3"},
			want:   "[GALACTIC] #1 -> server: \"a b 3\"\n",
		},
		{
			name:   "server text keeps control characters visible",
			params: PrintLineParams{ServerName: "GALACTIC", Client: "#1", Line: "Bye!\r\n"},
			want:   "[GALACTIC] server -> #1: \"Bye!\\r\\n\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.params.Writer = &buf
			PrintLine(tt.params)
			if got := buf.String(); got != tt.want {
				t.Errorf("PrintLine() = %q, want %q", got, tt.want)
			}
		})
	}
}
