package mpd

import (
	"strconv"
	"strings"

	"github.com/pior/mpd/protocol"
)

// Output is an audio output configured in the daemon.
type Output struct {
	ID         int
	Name       string
	Plugin     string
	Enabled    bool
	Attributes map[string]string
}

// Attribute returns the runtime attribute name, if reported.
func (o *Output) Attribute(name string) (string, bool) {
	v, ok := o.Attributes[name]
	return v, ok
}

var outputCodec = entityCodec[*Output]{
	name:    "output",
	primary: "outputid",
	begin:   beginOutput,
	feed:    (*Output).feed,
	free:    func(*Output) {},
}

func beginOutput(pair protocol.Pair) (*Output, error) {
	id, err := strconv.Atoi(pair.Value)
	if err != nil {
		return nil, err
	}
	return &Output{ID: id}, nil
}

func (o *Output) feed(pair protocol.Pair) bool {
	switch pair.Name {
	case "outputid":
		return false
	case "outputname":
		o.Name = pair.Value
	case "plugin":
		o.Plugin = pair.Value
	case "outputenabled":
		o.Enabled = pair.Value == "1"
	case "attribute":
		if name, value, ok := strings.Cut(pair.Value, "="); ok {
			if o.Attributes == nil {
				o.Attributes = make(map[string]string)
			}
			o.Attributes[name] = value
		}
	}

	return true
}
