package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateNoteRequest struct {
	Title    string `json:"title" validate:"required,max=150"`
	Content  string `json:"content"`
	Category string `json:"category" validate:"omitempty,max=50"`
}

type CreateNoteResponse struct {
	Id uuid.UUID `json:"id"`
}

type NoteResponse struct {
	Id         uuid.UUID   `json:"id"`
	Title      string      `json:"title"`
	Content    string      `json:"content"`
	Locked     bool        `json:"locked"`
	OwnerId    uuid.UUID   `json:"owner_id"`
	SharedWith []uuid.UUID `json:"shared_with"`
	Category   string      `json:"category,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  *time.Time  `json:"updated_at,omitempty"`
}

type UpdateNoteRequest struct {
	Id       uuid.UUID
	Title    string `json:"title" validate:"required,max=150"`
	Content  string `json:"content"`
	Category string `json:"category" validate:"omitempty,max=50"`
}

type UpdateNoteResponse struct {
	Id uuid.UUID `json:"id"`
}

type ToggleLockResponse struct {
	Id     uuid.UUID `json:"id"`
	Locked bool      `json:"locked"`
}

type ShareNoteRequest struct {
	Id         uuid.UUID
	SharedWith []uuid.UUID `json:"shared_with" validate:"required"`
}

type NoteActivityResponse struct {
	Id        uuid.UUID              `json:"id"`
	ActorId   uuid.UUID              `json:"actor_id"`
	Action    string                 `json:"action"`
	Detail    map[string]interface{} `json:"detail,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// PublishNoteActivityMessage is the payload carried on the in-process
// activity topic between the note service and the activity consumer.
type PublishNoteActivityMessage struct {
	NoteId  uuid.UUID              `json:"note_id"`
	ActorId uuid.UUID              `json:"actor_id"`
	Action  string                 `json:"action"`
	Detail  map[string]interface{} `json:"detail,omitempty"`
}
