package core

// Frame is a raw binary payload, one marshaled event on the wire.
type Frame []byte

// ConnID identifies a single active transport connection. It is
// allocated by the adapter when the connection is accepted and is
// never reused while the connection lives.
type ConnID string

// SignalConnection abstracts for a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
