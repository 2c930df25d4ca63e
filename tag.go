package mpd

import (
	"errors"
	"strings"
)

// ErrInvalidTagType is returned when a tag kind cannot hold values.
var ErrInvalidTagType = errors.New("mpd: invalid tag type")

// TagType identifies a song attribute category.
type TagType int

// Tag kinds stored on a Song. TagAny is the search pseudo-kind and TagCount
// is the number of kinds; neither is a storage target.
const (
	TagUnknown TagType = -1

	TagArtist TagType = iota - 1
	TagAlbum
	TagAlbumArtist
	TagTitle
	TagTrack
	TagName
	TagGenre
	TagDate
	TagComposer
	TagPerformer
	TagComment
	TagDisc
	TagMusicBrainzArtistID
	TagMusicBrainzAlbumID
	TagMusicBrainzAlbumArtistID
	TagMusicBrainzTrackID
	TagFile
	TagAny
	TagCount
)

// Protocol names, indexed by TagType
var tagNames = [TagCount]string{
	TagArtist:                   "Artist",
	TagAlbum:                    "Album",
	TagAlbumArtist:              "AlbumArtist",
	TagTitle:                    "Title",
	TagTrack:                    "Track",
	TagName:                     "Name",
	TagGenre:                    "Genre",
	TagDate:                     "Date",
	TagComposer:                 "Composer",
	TagPerformer:                "Performer",
	TagComment:                  "Comment",
	TagDisc:                     "Disc",
	TagMusicBrainzArtistID:      "MUSICBRAINZ_ARTISTID",
	TagMusicBrainzAlbumID:       "MUSICBRAINZ_ALBUMID",
	TagMusicBrainzAlbumArtistID: "MUSICBRAINZ_ALBUMARTISTID",
	TagMusicBrainzTrackID:       "MUSICBRAINZ_TRACKID",
	TagFile:                     "file",
	TagAny:                      "any",
}

// String returns the protocol name of t, or "unknown".
func (t TagType) String() string {
	if t < 0 || t >= TagCount {
		return "unknown"
	}
	return tagNames[t]
}

// Valid reports whether t can hold values on a Song.
func (t TagType) Valid() bool {
	return t >= 0 && t < TagCount && t != TagAny
}

// ParseTagType maps a protocol tag name to its TagType, ignoring case.
// Unrecognized names return TagUnknown.
func ParseTagType(name string) TagType {
	for i, n := range tagNames {
		if strings.EqualFold(n, name) {
			return TagType(i)
		}
	}
	return TagUnknown
}
