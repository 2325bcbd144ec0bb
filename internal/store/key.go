package store

import "fmt"

// KeyState tells whether a record's id was issued locally or by the service.
type KeyState int

const (
	// KeyTemporary marks a record inserted optimistically and not yet confirmed.
	KeyTemporary KeyState = iota + 1
	// KeyConfirmed marks a record whose id was issued by the budget service.
	KeyConfirmed
)

// Key is the reconciliation key of a record: either Temporary(id) or
// Confirmed(id). The zero Key matches nothing.
type Key struct {
	state KeyState
	id    string
}

// Temporary returns the key of an optimistic record.
func Temporary(id string) Key { return Key{state: KeyTemporary, id: id} }

// Confirmed returns the key of a server-confirmed record.
func Confirmed(id string) Key { return Key{state: KeyConfirmed, id: id} }

// ID returns the id carried by the key.
func (k Key) ID() string { return k.id }

// State returns which variant the key is.
func (k Key) State() KeyState { return k.state }

// IsTemporary reports whether the key still awaits confirmation.
func (k Key) IsTemporary() bool { return k.state == KeyTemporary }

// IsConfirmed reports whether the key was issued by the service.
func (k Key) IsConfirmed() bool { return k.state == KeyConfirmed }

func (k Key) String() string {
	switch k.state {
	case KeyTemporary:
		return fmt.Sprintf("Temporary(%s)", k.id)
	case KeyConfirmed:
		return fmt.Sprintf("Confirmed(%s)", k.id)
	default:
		return "Key()"
	}
}
