package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NoteActivity struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	NoteId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	ActorId   uuid.UUID      `gorm:"type:uuid;not null;index"`
	Action    string         `gorm:"type:varchar(20);not null"`
	Detail    datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
}

func (NoteActivity) TableName() string {
	return "note_activities"
}
