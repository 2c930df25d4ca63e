package protocol

import (
	"bytes"
)

var pairSeparatorBytes = []byte(PairSeparator)

// Pair is one "name: value" line of a response.
type Pair struct {
	Name  string
	Value string
}

// String returns the pair in wire format, without the line terminator.
func (p Pair) String() string {
	return p.Name + PairSeparator + p.Value
}

// ParsePair splits line at the first ": ".
// The name must not be empty; the value may be.
func ParsePair(line []byte) (Pair, bool) {
	idx := bytes.Index(line, pairSeparatorBytes)
	if idx <= 0 {
		return Pair{}, false
	}

	return Pair{
		Name:  string(line[:idx]),
		Value: string(line[idx+len(pairSeparatorBytes):]),
	}, true
}
