package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCommand(t *testing.T) {
	tests := []struct {
		name     string
		cmd      string
		args     []string
		expected string
	}{
		{name: "no args", cmd: "outputs", expected: "outputs\n"},
		{name: "int arg", cmd: "enableoutput", args: []string{IntArg(2)}, expected: "enableoutput 2\n"},
		{name: "arg with space", cmd: "find", args: []string{"artist", "Johann Sebastian Bach"}, expected: "find artist \"Johann Sebastian Bach\"\n"},
		{name: "empty arg", cmd: "find", args: []string{"album", ""}, expected: "find album \"\"\n"},
		{name: "escaped quote", cmd: "find", args: []string{"title", `Say "Hi"`}, expected: "find title \"Say \\\"Hi\\\"\"\n"},
		{name: "escaped backslash", cmd: "add", args: []string{`a\b`}, expected: "add \"a\\\\b\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := WriteCommand(&buf, tt.cmd, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestWriteCommand_Invalid(t *testing.T) {
	var buf bytes.Buffer

	assert.Error(t, WriteCommand(&buf, ""))
	assert.Error(t, WriteCommand(&buf, "two words"))
	assert.Error(t, WriteCommand(&buf, "add", "line\nbreak"))
	assert.Zero(t, buf.Len())
}
