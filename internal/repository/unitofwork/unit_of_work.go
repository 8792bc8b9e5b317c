package unitofwork

import (
	"context"

	"collab-notepad-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	NoteRepository() contract.NoteRepository
	NoteActivityRepository() contract.NoteActivityRepository
}
