// Package protocol implements the wire format of the Music Player Daemon
// client protocol.
//
// The protocol is line based. A command is one line of words; the daemon
// answers with zero or more "name: value" lines followed by "OK", or by a
// single "ACK" line describing the error.
//
// This package only deals with lines. It has no notion of songs or outputs
// and does not own a connection: higher level code decides how a stream of
// pairs is turned into entities.
//
// # Reading
//
//	line, err := protocol.ReadLine(r)
//	if err != nil {
//	    if protocol.ShouldCloseConnection(err) {
//	        conn.Close()
//	    }
//	    return err
//	}
//	switch line.Kind {
//	case protocol.LinePair:
//	    // line.Pair.Name, line.Pair.Value
//	case protocol.LineOK:
//	    // end of response
//	case protocol.LineAck:
//	    // line.Ack describes the failure; connection stays usable
//	}
//
// # Writing
//
//	err := protocol.WriteCommand(w, "enableoutput", protocol.IntArg(1))
package protocol
