package domain

type RoomID string

const (
	DefaultCode     = "// Start collaborating...\n"
	DefaultLanguage = "javascript"
)

// Room is the shared document state of one editing session.
// No transport or locking here; the owning store guards mutation.
type Room struct {
	ID       RoomID
	Code     string
	Language string
}

// NewRoom avoids raw literals in the store and keeps the defaults in
// one place. A fresh room always answers with the starter buffer.
func NewRoom(id RoomID) *Room {
	return &Room{
		ID:       id,
		Code:     DefaultCode,
		Language: DefaultLanguage,
	}
}
