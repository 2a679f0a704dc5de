package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"todo/internal/service"
)

func TestFormatTasks(t *testing.T) {
	var buf bytes.Buffer
	FormatTasks(&buf, []service.Task{
		{ID: "a", Title: "Buy milk", Description: "2%"},
		{ID: "b", Title: "  ", Description: "line one\nline two"},
		{ID: "c", Title: "No details"},
	})

	want := "   1  Buy milk\n" +
		"      2%\n" +
		"   2  (untitled)\n" +
		"      line one line two\n" +
		"   3  No details\n"
	assert.Equal(t, want, buf.String())
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "(untitled)"},
		{"\n", "(untitled)"},
		{"a\r\nb", "a  b"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalize(tt.in), "normalize(%q)", tt.in)
	}
}
