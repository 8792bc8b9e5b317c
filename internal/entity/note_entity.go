package entity

import (
	"time"

	"github.com/google/uuid"
)

// Note is the domain note. SharedWith is a genuine set of user ids; the CSV
// encoding of the storage column never leaves the mapper.
type Note struct {
	Id         uuid.UUID
	Title      string
	Content    string
	Locked     bool
	OwnerId    uuid.UUID
	SharedWith []uuid.UUID
	Category   string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// IsSharedWith reports whether userId is a shared recipient of the note.
// Owner access is implicit and never recorded in SharedWith.
func (n *Note) IsSharedWith(userId uuid.UUID) bool {
	for _, id := range n.SharedWith {
		if id == userId {
			return true
		}
	}
	return false
}
