package contract

import (
	"context"

	"collab-notepad-be/internal/entity"
	"collab-notepad-be/internal/repository/specification"
)

type NoteActivityRepository interface {
	Create(ctx context.Context, activity *entity.NoteActivity) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.NoteActivity, error)
}
