// Package shard feeds gateway frames from one connection into the cache
// maintainer and the event dispatcher.
package shard

import (
	"fmt"

	"github.com/randalmurphal/gatecore/pkg/gatecore/document"
)

// Gateway opcodes the shard reacts to. Heartbeats, identify and resume
// belong to the transport.
const (
	OpDispatch     = 0
	OpHeartbeat    = 1
	OpReconnect    = 7
	OpInvalid      = 9
	OpHello        = 10
	OpHeartbeatAck = 11
)

// Envelope is a decoded gateway frame.
type Envelope struct {
	Op   int
	Seq  int64
	Type string
	// Data is the "d" object of a dispatch frame, nil otherwise.
	Data document.Source

	frame document.Object
}

// DecodeEnvelope decodes a gateway frame.
func DecodeEnvelope(raw []byte) (*Envelope, error) {
	frame, err := document.Parse(raw)
	if err != nil {
		return nil, err
	}
	op, err := document.Get[int64](frame, "op")
	if err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	seq, err := document.Get[int64](frame, "s")
	if err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	typ, err := document.Get[string](frame, "t")
	if err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	env := &Envelope{Op: int(op), Seq: seq, Type: typ, frame: frame}
	if env.Op == OpDispatch {
		// A malformed "d" is reported by the dispatcher as a dropped event.
		if data, ok, err := document.Nested(frame, "d"); err == nil && ok {
			env.Data = data
		}
	}
	return env, nil
}

// Frame returns the whole decoded frame.
func (e *Envelope) Frame() document.Object {
	return e.frame
}
