package testutils

import (
	"bytes"
	"io"
	"net"
	"strings"
	"sync/atomic"
	"time"
)

// Greeting is the first line a daemon sends; prepend it to mock responses.
const Greeting = "OK MPD 0.23.5\n"

// ConnectionMock is a net.Conn serving a scripted response stream.
//
// Reads return the scripted data, then ReadErr (io.EOF by default).
// Writes are recorded and can be inspected with Written.
type ConnectionMock struct {
	readBuf  *bytes.Buffer
	writeBuf *bytes.Buffer
	closed   atomic.Bool

	// ReadErr is returned once the scripted data is exhausted
	ReadErr error
	// WriteErr, when set, fails every write
	WriteErr error
}

// NewConnectionMock creates a mock connection serving the concatenation of
// responseData, preceded by nothing: include Greeting when the code under
// test expects one.
func NewConnectionMock(responseData ...string) *ConnectionMock {
	return &ConnectionMock{
		readBuf:  bytes.NewBufferString(strings.Join(responseData, "")),
		writeBuf: &bytes.Buffer{},
		ReadErr:  io.EOF,
	}
}

func (m *ConnectionMock) Read(b []byte) (n int, err error) {
	if m.readBuf.Len() == 0 {
		return 0, m.ReadErr
	}
	return m.readBuf.Read(b)
}

func (m *ConnectionMock) Write(b []byte) (n int, err error) {
	if m.WriteErr != nil {
		return 0, m.WriteErr
	}
	return m.writeBuf.Write(b)
}

func (m *ConnectionMock) Close() error {
	m.closed.Store(true)
	return nil
}

// IsClosed reports whether Close was called.
func (m *ConnectionMock) IsClosed() bool {
	return m.closed.Load()
}

func (m *ConnectionMock) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0}
}

func (m *ConnectionMock) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 6600}
}

func (m *ConnectionMock) SetDeadline(t time.Time) error      { return nil }
func (m *ConnectionMock) SetReadDeadline(t time.Time) error  { return nil }
func (m *ConnectionMock) SetWriteDeadline(t time.Time) error { return nil }

// Written returns the raw commands written to the mock connection
func (m *ConnectionMock) Written() string {
	return m.writeBuf.String()
}
