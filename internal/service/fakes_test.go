package service

import (
	"context"
	"strings"

	"collab-notepad-be/internal/entity"
	"collab-notepad-be/internal/repository/contract"
	"collab-notepad-be/internal/repository/specification"
	"collab-notepad-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// In-memory repositories that interpret the same specifications the GORM
// implementations translate to SQL. Service tests run against these.

type fakeNoteRepo struct {
	notes map[uuid.UUID]*entity.Note
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{notes: make(map[uuid.UUID]*entity.Note)}
}

func cloneNote(n *entity.Note) *entity.Note {
	cp := *n
	if n.SharedWith != nil {
		cp.SharedWith = append([]uuid.UUID(nil), n.SharedWith...)
	}
	return &cp
}

func matchNote(n *entity.Note, spec specification.Specification) bool {
	switch s := spec.(type) {
	case specification.ByID:
		return n.Id == s.ID
	case specification.OwnedByUser:
		return n.OwnerId == s.UserID
	case specification.VisibleToUser:
		return n.OwnerId == s.UserID || n.IsSharedWith(s.UserID)
	case specification.ContentContains:
		return strings.Contains(n.Content, s.Substring)
	default:
		return true
	}
}

func (r *fakeNoteRepo) Create(_ context.Context, note *entity.Note) error {
	r.notes[note.Id] = cloneNote(note)
	return nil
}

func (r *fakeNoteRepo) Update(_ context.Context, note *entity.Note) error {
	r.notes[note.Id] = cloneNote(note)
	return nil
}

func (r *fakeNoteRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.notes, id)
	return nil
}

func (r *fakeNoteRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Note, error) {
	for _, n := range r.notes {
		ok := true
		for _, spec := range specs {
			if !matchNote(n, spec) {
				ok = false
				break
			}
		}
		if ok {
			return cloneNote(n), nil
		}
	}
	return nil, nil
}

func (r *fakeNoteRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	var out []*entity.Note
	for _, n := range r.notes {
		ok := true
		for _, spec := range specs {
			if !matchNote(n, spec) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, cloneNote(n))
		}
	}
	return out, nil
}

func (r *fakeNoteRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func matchUser(u *entity.User, spec specification.Specification) bool {
	switch s := spec.(type) {
	case specification.ByID:
		return u.Id == s.ID
	case specification.ByUsername:
		return u.Username == s.Username
	default:
		return true
	}
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	cp := *user
	r.users[user.Id] = &cp
	return nil
}

func (r *fakeUserRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.User, error) {
	for _, u := range r.users {
		ok := true
		for _, spec := range specs {
			if !matchUser(u, spec) {
				ok = false
				break
			}
		}
		if ok {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range r.users {
		ok := true
		for _, spec := range specs {
			if !matchUser(u, spec) {
				ok = false
				break
			}
		}
		if ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakeActivityRepo struct {
	rows []*entity.NoteActivity
}

func (r *fakeActivityRepo) Create(_ context.Context, activity *entity.NoteActivity) error {
	cp := *activity
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *fakeActivityRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.NoteActivity, error) {
	var out []*entity.NoteActivity
	for _, a := range r.rows {
		ok := true
		for _, spec := range specs {
			if s, isByNote := spec.(specification.ByNoteID); isByNote && a.NoteId != s.NoteID {
				ok = false
				break
			}
		}
		if ok {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeUnitOfWork struct {
	noteRepo     *fakeNoteRepo
	userRepo     *fakeUserRepo
	activityRepo *fakeActivityRepo
}

func newFakeUnitOfWork() *fakeUnitOfWork {
	return &fakeUnitOfWork{
		noteRepo:     newFakeNoteRepo(),
		userRepo:     newFakeUserRepo(),
		activityRepo: &fakeActivityRepo{},
	}
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) UserRepository() contract.UserRepository { return u.userRepo }
func (u *fakeUnitOfWork) NoteRepository() contract.NoteRepository { return u.noteRepo }
func (u *fakeUnitOfWork) NoteActivityRepository() contract.NoteActivityRepository {
	return u.activityRepo
}

type fakeFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

type fakePublisher struct {
	published [][]byte
}

func (p *fakePublisher) Publish(_ context.Context, payload []byte) error {
	p.published = append(p.published, payload)
	return nil
}
