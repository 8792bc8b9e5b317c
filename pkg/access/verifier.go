package access

import (
	"collab-notepad-be/internal/entity"
	"collab-notepad-be/internal/pkg/apperrors"

	"github.com/google/uuid"
)

// Operation is an intent against a note.
type Operation string

const (
	OpRead   Operation = "read"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpLock   Operation = "lock"
	OpShare  Operation = "share"
)

// Verifier decides whether a user may perform an operation on a note.
// It is a pure decision function over already-loaded state: callers check
// existence first, so NotFound always precedes Unauthorized.
type Verifier struct{}

func NewVerifier() *Verifier {
	return &Verifier{}
}

// Authorize returns nil when the operation is allowed, ErrUnauthorized
// otherwise. Sharing grants read access only: a shared recipient can view
// the note and exchange live edits over the realtime channel, but every
// persisted write (update, delete, lock, share) stays owner-only.
func (v *Verifier) Authorize(userId uuid.UUID, note *entity.Note, op Operation) error {
	switch op {
	case OpRead:
		if userId == note.OwnerId || note.IsSharedWith(userId) {
			return nil
		}
	case OpUpdate, OpDelete, OpLock, OpShare:
		if userId == note.OwnerId {
			return nil
		}
	}
	return apperrors.ErrUnauthorized
}

// CanRead is a convenience for callers that want a boolean read check.
func (v *Verifier) CanRead(userId uuid.UUID, note *entity.Note) bool {
	return v.Authorize(userId, note, OpRead) == nil
}
