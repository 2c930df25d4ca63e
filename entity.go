package mpd

import (
	"github.com/pior/mpd/protocol"
)

// entityCodec describes how one entity type is rebuilt from pairs.
//
// A record starts with the primary pair. begin builds the entity from it;
// feed is then offered every following pair and returns false for the
// first pair that does not belong to the record, which is left unconsumed.
// free discards an entity that could not be completed.
type entityCodec[T any] struct {
	name    string
	primary string
	begin   func(protocol.Pair) (T, error)
	feed    func(T, protocol.Pair) bool
	free    func(T)
}

// recvEntity decodes the next record of a list response.
//
// ok is false when no record starts at the current position of the
// stream; that is not an error. On failure the partial entity is freed and
// the connection's sticky error is returned.
func recvEntity[T any](c *Connection, codec entityCodec[T]) (entity T, ok bool, err error) {
	var zero T

	pair, ok := c.RecvPairNamed(codec.primary)
	if !ok {
		return zero, false, c.Err()
	}

	entity, err = codec.begin(pair)
	if err != nil {
		c.setError(&protocol.ParseError{Message: "cannot decode " + codec.name + " from " + pair.String(), Err: err})
		return zero, false, c.Err()
	}

	held := false
	for {
		pair, ok = c.RecvPair()
		if !ok || c.Err() != nil {
			break
		}
		if !codec.feed(entity, pair) {
			held = true
			break
		}
	}

	if err := c.Err(); err != nil {
		codec.free(entity)
		return zero, false, err
	}

	if held {
		c.EnqueuePair(pair)
	}

	c.logger.Debug("decoded entity", "entity", codec.name, "primary", codec.primary)
	return entity, true, nil
}
