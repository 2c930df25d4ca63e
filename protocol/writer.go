package protocol

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// Buffer pool for building command lines
var bufferPool = sync.Pool{
	New: func() any {
		// Most commands are a name and one short argument
		return bytes.NewBuffer(make([]byte, 0, 128))
	},
}

func getBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > MaxLineLength {
		return
	}
	buf.Reset()
	bufferPool.Put(buf)
}

// ValidateCommandName checks that name can be sent as a command word.
func ValidateCommandName(name string) error {
	if name == "" {
		return fmt.Errorf("protocol: empty command name")
	}
	if strings.ContainsAny(name, " \t\r\n\"") {
		return fmt.Errorf("protocol: invalid command name %q", name)
	}
	return nil
}

// WriteCommand serializes one command line and writes it to w in a single call.
// Format: <name>[ <arg>]*\n
//
// Arguments that are empty or contain whitespace, quotes or backslashes are
// double-quoted with '"' and '\' escaped.
func WriteCommand(w io.Writer, name string, args ...string) error {
	if err := ValidateCommandName(name); err != nil {
		return err
	}

	buf := getBuffer()
	defer putBuffer(buf)

	buf.WriteString(name)
	for _, arg := range args {
		if strings.ContainsAny(arg, "\n") {
			return fmt.Errorf("protocol: argument of %s contains a newline", name)
		}
		buf.WriteByte(' ')
		appendArg(buf, arg)
	}
	buf.WriteString(LF)

	if _, err := w.Write(buf.Bytes()); err != nil {
		return &ConnectionError{Op: "write", Err: err}
	}
	return nil
}

// IntArg formats an integer command argument.
func IntArg(n int) string {
	return strconv.Itoa(n)
}

func appendArg(buf *bytes.Buffer, arg string) {
	if arg != "" && !strings.ContainsAny(arg, " \t\"\\'") {
		buf.WriteString(arg)
		return
	}

	buf.WriteByte('"')
	for i := 0; i < len(arg); i++ {
		c := arg[i]
		if c == '"' || c == '\\' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(c)
	}
	buf.WriteByte('"')
}
