package mpd

import (
	"strconv"
	"strings"

	"github.com/pior/mpd/internal/strpool"
	"github.com/pior/mpd/protocol"
)

// Sentinels for Song scalars that were never reported.
const (
	NoTime = -1 // duration unknown
	NoPos  = -1 // not in the queue
	NoID   = -1 // no queue id
)

// Song is a file known to the daemon, with its tags.
//
// Every tag kind holds an ordered list of values in the order they were
// added. Values are interned in a process-wide pool so equal strings across
// songs share storage. A Song must be released with Release once the caller
// is done with it.
//
// A Song is not safe for concurrent mutation; a fully built Song can be
// handed to another goroutine.
type Song struct {
	tags [TagCount][]strpool.Handle

	time int
	pos  int
	id   int
}

// NewSong returns a song with no tags and unset scalars.
func NewSong() *Song {
	return &Song{
		time: NoTime,
		pos:  NoPos,
		id:   NoID,
	}
}

// Release returns every tag value to the pool. The song must not be used
// afterwards, and Release must be called exactly once.
func (s *Song) Release() {
	for i := range s.tags {
		for _, h := range s.tags[i] {
			strpool.Put(h)
		}
		s.tags[i] = nil
	}
}

// Clone returns an independent copy of s. Tag values are re-interned, so
// the copy shares storage with s but not its lists.
func (s *Song) Clone() (*Song, error) {
	dup := NewSong()

	for t := range s.tags {
		for _, h := range s.tags[t] {
			if err := dup.AddTag(TagType(t), h.Value()); err != nil {
				dup.Release()
				return nil, err
			}
		}
	}

	dup.time = s.time
	dup.pos = s.pos
	dup.id = s.id

	return dup, nil
}

// AddTag appends value to the list of t. Repeated values are kept.
// Returns ErrInvalidTagType, without modifying s, for TagAny and kinds
// outside the enumeration.
func (s *Song) AddTag(t TagType, value string) error {
	if !t.Valid() {
		return ErrInvalidTagType
	}

	s.tags[t] = append(s.tags[t], strpool.Get(value))
	return nil
}

// Tag returns the idx-th value of t (zero based, insertion order).
// ok is false for invalid kinds, empty slots and out of range indexes.
func (s *Song) Tag(t TagType, idx int) (value string, ok bool) {
	if !t.Valid() || idx < 0 || idx >= len(s.tags[t]) {
		return "", false
	}
	return s.tags[t][idx].Value(), true
}

// TagValues returns a copy of all values of t, nil if there are none.
func (s *Song) TagValues(t TagType) []string {
	if !t.Valid() || len(s.tags[t]) == 0 {
		return nil
	}

	values := make([]string, len(s.tags[t]))
	for i, h := range s.tags[t] {
		values[i] = h.Value()
	}
	return values
}

// TagCount returns the number of values held by t.
func (s *Song) TagCount(t TagType) int {
	if !t.Valid() {
		return 0
	}
	return len(s.tags[t])
}

// URI returns the song's file name relative to the music directory.
func (s *Song) URI() string {
	uri, _ := s.Tag(TagFile, 0)
	return uri
}

// SetTime sets the duration in seconds.
func (s *Song) SetTime(t int) {
	s.time = t
}

// Time returns the duration in seconds, or NoTime.
func (s *Song) Time() int {
	return s.time
}

// SetPos sets the queue position.
func (s *Song) SetPos(pos int) {
	s.pos = pos
}

// Pos returns the queue position, or NoPos.
func (s *Song) Pos() int {
	return s.pos
}

// SetID sets the queue id.
func (s *Song) SetID(id int) {
	s.id = id
}

// ID returns the queue id, or NoID.
func (s *Song) ID() int {
	return s.id
}

// songCodec decodes songs from "file: ..." records.
var songCodec = entityCodec[*Song]{
	name:    "song",
	primary: "file",
	begin:   beginSong,
	feed:    (*Song).feed,
	free:    (*Song).Release,
}

func beginSong(pair protocol.Pair) (*Song, error) {
	song := NewSong()
	if err := song.AddTag(TagFile, pair.Value); err != nil {
		return nil, err
	}
	return song, nil
}

// feed applies one pair of the song's record. It returns false, without
// consuming the pair, when the pair starts the next record. Keys match
// without regard to case, like tag names.
func (s *Song) feed(pair protocol.Pair) bool {
	t := ParseTagType(pair.Name)

	switch {
	case t == TagFile, strings.EqualFold(pair.Name, "directory"), strings.EqualFold(pair.Name, "playlist"):
		// start of the next record in mixed listings (lsinfo)
		return false
	case t.Valid():
		s.tags[t] = append(s.tags[t], strpool.Get(pair.Value))
	case strings.EqualFold(pair.Name, "Time"):
		s.time = parseScalar(pair.Value, s.time)
	case strings.EqualFold(pair.Name, "Pos"):
		s.pos = parseScalar(pair.Value, s.pos)
	case strings.EqualFold(pair.Name, "Id"):
		s.id = parseScalar(pair.Value, s.id)
	}

	return true
}

// parseScalar returns value as a non-negative integer, or current when it
// is not one.
func parseScalar(value string, current int) int {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return current
	}
	return n
}
