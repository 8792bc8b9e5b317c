package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActivityCreated  = "created"
	ActivityUpdated  = "updated"
	ActivityDeleted  = "deleted"
	ActivityLocked   = "locked"
	ActivityUnlocked = "unlocked"
	ActivityShared   = "shared"
)

type NoteActivity struct {
	Id        uuid.UUID
	NoteId    uuid.UUID
	ActorId   uuid.UUID
	Action    string
	Detail    map[string]interface{}
	CreatedAt time.Time
}
