package core

import "errors"

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// Frame is a raw text payload as it travels on the wire.
type Frame []byte

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
// TrySend never blocks: a full queue reports ErrBackpressure and a
// closed connection reports ErrConnClosed.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
