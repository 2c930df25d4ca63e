package protocol

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Pre-allocated byte slices for comparisons (avoid allocation in hot path)
var (
	lfBytes        = []byte(LF)
	okBytes        = []byte(ResponseOK)
	listOKBytes    = []byte(ResponseListOK)
	ackPrefixBytes = []byte(AckPrefix)
)

// LineKind classifies a response line.
type LineKind int

const (
	// LinePair is a "name: value" line; Line.Pair is set
	LinePair LineKind = iota
	// LineOK ends the response
	LineOK
	// LineListOK ends one sub-response of a command list
	LineListOK
	// LineAck ends the response with an error; Line.Ack is set
	LineAck
)

// Line is one parsed response line.
type Line struct {
	Kind LineKind
	Pair Pair
	Ack  *ServerError
}

// ReadLine reads and classifies a single response line from r.
//
// Go errors returned indicate I/O or parsing failures:
//   - ConnectionError: the read failed (including io.EOF)
//   - ParseError: the line is neither a terminator nor a pair
//
// An ACK line is not a Go error: it is returned as LineAck so the caller
// decides how to record it.
func ReadLine(r *bufio.Reader) (Line, error) {
	line, err := readRawLine(r)
	if err != nil {
		return Line{}, err
	}

	if bytes.Equal(line, okBytes) {
		return Line{Kind: LineOK}, nil
	}

	if bytes.Equal(line, listOKBytes) {
		return Line{Kind: LineListOK}, nil
	}

	if bytes.HasPrefix(line, ackPrefixBytes) {
		ack, err := ParseAck(string(line))
		if err != nil {
			return Line{}, err
		}
		return Line{Kind: LineAck, Ack: ack}, nil
	}

	pair, ok := ParsePair(line)
	if !ok {
		return Line{}, &ParseError{Message: fmt.Sprintf("malformed line %q", line)}
	}

	return Line{Kind: LinePair, Pair: pair}, nil
}

// readRawLine returns the next line without its terminator. The returned
// slice may point into r's buffer and is only valid until the next read.
//
// Lines longer than r's buffer are assembled from several ReadSlice calls;
// reading stops with a ParseError as soon as MaxLineLength is exceeded.
func readRawLine(r *bufio.Reader) ([]byte, error) {
	line, err := r.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		// ReadSlice reuses the buffer: keep a copy before reading again
		long := append([]byte(nil), line...)
		for err == bufio.ErrBufferFull {
			if len(long) > MaxLineLength {
				return nil, &ParseError{Message: "line exceeds maximum length"}
			}
			line, err = r.ReadSlice('\n')
			long = append(long, line...)
		}
		line = long
	}
	if err != nil {
		return nil, &ConnectionError{Op: "read", Err: err}
	}

	if len(line) > MaxLineLength {
		return nil, &ParseError{Message: "line exceeds maximum length"}
	}

	return bytes.TrimSuffix(line, lfBytes), nil
}

// ParseAck parses an error line of the form
//
//	ACK [<code>@<index>] {<command>} <message>
func ParseAck(line string) (*ServerError, error) {
	rest, ok := strings.CutPrefix(line, AckPrefix)
	if !ok || !strings.HasPrefix(rest, "[") {
		return nil, &ParseError{Message: fmt.Sprintf("malformed ACK %q", line)}
	}

	head, rest, ok := strings.Cut(rest[1:], "]")
	if !ok {
		return nil, &ParseError{Message: fmt.Sprintf("malformed ACK %q", line)}
	}

	codeStr, indexStr, ok := strings.Cut(head, "@")
	if !ok {
		return nil, &ParseError{Message: fmt.Sprintf("malformed ACK %q", line)}
	}

	code, err := strconv.Atoi(codeStr)
	if err != nil {
		return nil, &ParseError{Message: "invalid ACK code", Err: err}
	}

	index, err := strconv.Atoi(indexStr)
	if err != nil {
		return nil, &ParseError{Message: "invalid ACK command list index", Err: err}
	}

	ack := &ServerError{
		Code:             AckCode(code),
		CommandListIndex: index,
	}

	rest = strings.TrimPrefix(rest, " ")
	if cmd, msg, found := strings.Cut(rest, "}"); found && strings.HasPrefix(cmd, "{") {
		ack.Command = cmd[1:]
		ack.Message = strings.TrimPrefix(msg, " ")
	} else {
		ack.Message = rest
	}

	return ack, nil
}

// Version is the protocol version announced in the greeting.
type Version struct {
	Major int
	Minor int
	Patch int
}

func (v Version) String() string {
	return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor) + "." + strconv.Itoa(v.Patch)
}

// AtLeast reports whether v is major.minor.patch or newer.
func (v Version) AtLeast(major, minor, patch int) bool {
	if v.Major != major {
		return v.Major > major
	}
	if v.Minor != minor {
		return v.Minor > minor
	}
	return v.Patch >= patch
}

// ParseVersion parses "x.y.z". Missing trailing components are zero.
func ParseVersion(s string) (Version, error) {
	var v Version
	parts := strings.SplitN(s, ".", 3)
	dst := []*int{&v.Major, &v.Minor, &v.Patch}

	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Version{}, &ParseError{Message: fmt.Sprintf("invalid version %q", s), Err: err}
		}
		*dst[i] = n
	}

	return v, nil
}

// ReadGreeting reads the "OK MPD x.y.z" line sent on connect.
func ReadGreeting(r *bufio.Reader) (Version, error) {
	line, err := readRawLine(r)
	if err != nil {
		return Version{}, err
	}

	rest, ok := strings.CutPrefix(string(line), GreetingPrefix)
	if !ok {
		return Version{}, &ParseError{Message: fmt.Sprintf("unexpected greeting %q", line)}
	}

	return ParseVersion(rest)
}
