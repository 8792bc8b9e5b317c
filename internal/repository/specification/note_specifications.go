package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnedByUser restricts to notes the user owns.
type OwnedByUser struct {
	UserID uuid.UUID
}

func (s OwnedByUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("owner_id = ?", s.UserID)
}

// VisibleToUser matches notes the user owns OR is a shared recipient of.
// shared_with is the comma-joined id column; a LIKE on the full uuid cannot
// collide with another id, so the legacy containment query stays correct.
type VisibleToUser struct {
	UserID uuid.UUID
}

func (s VisibleToUser) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + s.UserID.String() + "%"
	return db.Where("owner_id = ? OR shared_with LIKE ?", s.UserID, pattern)
}

// ContentContains matches notes whose content contains the substring.
// LIKE is case-sensitive on Postgres, which is the search contract.
type ContentContains struct {
	Substring string
}

func (s ContentContains) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("content LIKE ?", "%"+s.Substring+"%")
}

// ByNoteID filters activity rows by their note.
type ByNoteID struct {
	NoteID uuid.UUID
}

func (s ByNoteID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("note_id = ?", s.NoteID)
}
