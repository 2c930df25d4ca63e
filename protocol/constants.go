package protocol

// AckCode is the numeric error code carried by an ACK line.
type AckCode int

// ACK error codes sent by the daemon.
const (
	AckNotList       AckCode = 1
	AckArg           AckCode = 2
	AckPassword      AckCode = 3
	AckPermission    AckCode = 4
	AckUnknown       AckCode = 5
	AckNoExist       AckCode = 50
	AckPlaylistMax   AckCode = 51
	AckSystem        AckCode = 52
	AckPlaylistLoad  AckCode = 53
	AckUpdateAlready AckCode = 54
	AckPlayerSync    AckCode = 55
	AckExist         AckCode = 56
)

// Response markers
const (
	// LF terminates every line in both directions
	LF = "\n"

	// ResponseOK ends a successful response
	ResponseOK = "OK"

	// ResponseListOK ends one sub-response inside command_list_ok_begin
	ResponseListOK = "list_OK"

	// AckPrefix starts an error response
	AckPrefix = "ACK "

	// GreetingPrefix starts the line the daemon sends on connect
	GreetingPrefix = "OK MPD "

	// PairSeparator separates a pair's name from its value
	PairSeparator = ": "
)

// MaxLineLength bounds a single response line. The daemon's own limit
// for tag values is far below it.
const MaxLineLength = 64 * 1024
