package types

import (
	"fmt"
)

// Event is a contract event.  Index is the position of the event within its
// session's event log.
type Event struct {
	Type    TypeTag
	Index   uint32
	Payload []byte
}

func (e Event) String() string {
	return fmt.Sprintf("%s#%d", e.Type, e.Index)
}

// ByteSize is the number of bytes metered for the event.
func (e Event) ByteSize() uint64 {
	return uint64(len(e.Type) + len(e.Payload))
}

// EventLog is an append-only, ordered sequence of events.
type EventLog []Event

// Encode returns the canonical encoding of the event log.
func (log EventLog) Encode() ([]byte, error) {
	if log == nil {
		log = EventLog{}
	}
	data, err := Marshal([]Event(log))
	if err != nil {
		return nil, fmt.Errorf("failed to encode event log: %w", err)
	}
	return data, nil
}
