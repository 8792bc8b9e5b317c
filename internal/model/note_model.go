package model

import (
	"time"

	"github.com/google/uuid"
)

// Note row. SharedWith is a comma-joined list of user ids, matching the
// legacy column encoding; the mapper converts it to a set.
type Note struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title      string    `gorm:"type:varchar(150);not null"`
	Content    string    `gorm:"type:text;not null"`
	Locked     bool      `gorm:"not null;default:false"`
	OwnerId    uuid.UUID `gorm:"type:uuid;not null;index"`
	SharedWith string    `gorm:"type:text;not null;default:''"`
	Category   string    `gorm:"type:varchar(50)"`
	CreatedAt  time.Time  `gorm:"autoCreateTime"`
	UpdatedAt  *time.Time `gorm:"type:timestamptz"`
}

func (Note) TableName() string {
	return "notes"
}
