// Package core holds the transport-facing primitives shared by the engine
// and its adapters: the outbound frame, the non-blocking sender contract
// and fan-out delivery stats.
package core

import "encoding/json"

// Frame is one marshaled wire envelope. Broadcasts marshal once and hand
// the same frame to every receiver.
type Frame []byte

// Envelope is the wire shape in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Encode marshals an outbound event into a reusable frame.
func Encode(event string, data any) (Frame, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	f, err := json.Marshal(Envelope{Event: event, Data: raw})
	if err != nil {
		return nil, err
	}
	return Frame(f), nil
}

// Sender abstracts one participant's outbound half.
// Owned by the adapter; the adapter must Close() it.
// TrySend never blocks: a full buffer is the receiver's loss.
type Sender interface {
	TrySend(Frame) error
	Close()
}

// PublishResult reports delivery stats of one fan-out.
type PublishResult struct {
	SentTo  int
	Dropped int
}
