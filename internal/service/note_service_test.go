package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"collab-notepad-be/internal/dto"
	"collab-notepad-be/internal/entity"
	"collab-notepad-be/internal/pkg/apperrors"
	"collab-notepad-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNoteServiceForTest() (INoteService, *fakeUnitOfWork, *fakePublisher) {
	uow := newFakeUnitOfWork()
	pub := &fakePublisher{}
	svc := NewNoteService(&fakeFactory{uow: uow}, pub, nil, logger.NewNop())
	return svc, uow, pub
}

func seedNote(uow *fakeUnitOfWork, owner uuid.UUID, title, content string, shared ...uuid.UUID) *entity.Note {
	note := &entity.Note{
		Id:         uuid.New(),
		Title:      title,
		Content:    content,
		OwnerId:    owner,
		SharedWith: shared,
		CreatedAt:  time.Now(),
	}
	uow.noteRepo.notes[note.Id] = cloneNote(note)
	return note
}

func publishedActions(t *testing.T, pub *fakePublisher) []string {
	t.Helper()
	actions := make([]string, 0, len(pub.published))
	for _, payload := range pub.published {
		var msg dto.PublishNoteActivityMessage
		require.NoError(t, json.Unmarshal(payload, &msg))
		actions = append(actions, msg.Action)
	}
	return actions
}

func TestCreateDefaultsToUnlockedAndUnshared(t *testing.T) {
	svc, uow, pub := newNoteServiceForTest()
	owner := uuid.New()

	res, err := svc.Create(context.Background(), owner, &dto.CreateNoteRequest{
		Title:   "Groceries",
		Content: "milk,eggs",
	})
	require.NoError(t, err)

	stored := uow.noteRepo.notes[res.Id]
	require.NotNil(t, stored)
	assert.False(t, stored.Locked)
	assert.Empty(t, stored.SharedWith)
	assert.Equal(t, owner, stored.OwnerId)
	assert.Nil(t, stored.UpdatedAt)

	shown, err := svc.Show(context.Background(), owner, res.Id)
	require.NoError(t, err)
	assert.NotNil(t, shown.SharedWith)
	assert.Len(t, shown.SharedWith, 0)

	assert.Equal(t, []string{entity.ActivityCreated}, publishedActions(t, pub))
}

func TestShowVisibility(t *testing.T) {
	svc, uow, _ := newNoteServiceForTest()
	owner := uuid.New()
	recipient := uuid.New()
	stranger := uuid.New()

	note := seedNote(uow, owner, "Plan", "secret", recipient)

	_, err := svc.Show(context.Background(), owner, note.Id)
	assert.NoError(t, err)

	_, err = svc.Show(context.Background(), recipient, note.Id)
	assert.NoError(t, err)

	_, err = svc.Show(context.Background(), stranger, note.Id)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestShowMissingNoteIsNotFoundForEveryone(t *testing.T) {
	svc, _, _ := newNoteServiceForTest()

	_, err := svc.Show(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateByOwnerPersists(t *testing.T) {
	svc, uow, pub := newNoteServiceForTest()
	owner := uuid.New()
	note := seedNote(uow, owner, "Draft", "v1")

	_, err := svc.Update(context.Background(), owner, &dto.UpdateNoteRequest{
		Id:      note.Id,
		Title:   "Draft",
		Content: "v2",
	})
	require.NoError(t, err)

	stored := uow.noteRepo.notes[note.Id]
	assert.Equal(t, "v2", stored.Content)
	assert.NotNil(t, stored.UpdatedAt)
	assert.Contains(t, publishedActions(t, pub), entity.ActivityUpdated)
}

func TestUpdateBySharedRecipientDenied(t *testing.T) {
	svc, uow, pub := newNoteServiceForTest()
	owner := uuid.New()
	recipient := uuid.New()
	note := seedNote(uow, owner, "Draft", "v1", recipient)

	_, err := svc.Update(context.Background(), recipient, &dto.UpdateNoteRequest{
		Id:      note.Id,
		Title:   "Draft",
		Content: "hijacked",
	})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	// The recipient can read the note but the write must not land.
	assert.Equal(t, "v1", uow.noteRepo.notes[note.Id].Content)
	assert.Empty(t, pub.published)
}

func TestUpdateMissingNoteIsNotFound(t *testing.T) {
	svc, _, _ := newNoteServiceForTest()

	_, err := svc.Update(context.Background(), uuid.New(), &dto.UpdateNoteRequest{
		Id:      uuid.New(),
		Title:   "x",
		Content: "y",
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateSucceedsWhileLocked(t *testing.T) {
	svc, uow, _ := newNoteServiceForTest()
	owner := uuid.New()
	note := seedNote(uow, owner, "Draft", "v1")
	uow.noteRepo.notes[note.Id].Locked = true

	_, err := svc.Update(context.Background(), owner, &dto.UpdateNoteRequest{
		Id:      note.Id,
		Title:   "Draft",
		Content: "v2",
	})
	require.NoError(t, err)
	assert.Equal(t, "v2", uow.noteRepo.notes[note.Id].Content)
	assert.True(t, uow.noteRepo.notes[note.Id].Locked)
}

func TestDeleteOwnerOnly(t *testing.T) {
	svc, uow, _ := newNoteServiceForTest()
	owner := uuid.New()
	recipient := uuid.New()
	note := seedNote(uow, owner, "Gone soon", "bye", recipient)

	err := svc.Delete(context.Background(), recipient, note.Id)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Contains(t, uow.noteRepo.notes, note.Id)

	err = svc.Delete(context.Background(), owner, note.Id)
	require.NoError(t, err)
	assert.NotContains(t, uow.noteRepo.notes, note.Id)

	err = svc.Delete(context.Background(), owner, note.Id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestToggleLockFlipsAndRestores(t *testing.T) {
	svc, uow, pub := newNoteServiceForTest()
	owner := uuid.New()
	note := seedNote(uow, owner, "Draft", "v1")

	res, err := svc.ToggleLock(context.Background(), owner, note.Id)
	require.NoError(t, err)
	assert.True(t, res.Locked)
	assert.True(t, uow.noteRepo.notes[note.Id].Locked)

	res, err = svc.ToggleLock(context.Background(), owner, note.Id)
	require.NoError(t, err)
	assert.False(t, res.Locked)
	assert.False(t, uow.noteRepo.notes[note.Id].Locked)

	assert.Equal(t, []string{entity.ActivityLocked, entity.ActivityUnlocked}, publishedActions(t, pub))
}

func TestToggleLockDeniedForRecipient(t *testing.T) {
	svc, uow, _ := newNoteServiceForTest()
	owner := uuid.New()
	recipient := uuid.New()
	note := seedNote(uow, owner, "Draft", "v1", recipient)

	_, err := svc.ToggleLock(context.Background(), recipient, note.Id)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.False(t, uow.noteRepo.notes[note.Id].Locked)
}

func TestShareReplacesRecipientSet(t *testing.T) {
	svc, uow, _ := newNoteServiceForTest()
	owner := uuid.New()
	old := uuid.New()
	a := uuid.New()
	b := uuid.New()
	note := seedNote(uow, owner, "Plan", "secret", old)

	err := svc.Share(context.Background(), owner, &dto.ShareNoteRequest{
		Id:         note.Id,
		SharedWith: []uuid.UUID{a, b, a, owner, uuid.Nil},
	})
	require.NoError(t, err)

	stored := uow.noteRepo.notes[note.Id]
	assert.ElementsMatch(t, []uuid.UUID{a, b}, stored.SharedWith)
	assert.False(t, stored.IsSharedWith(old))
	assert.False(t, stored.IsSharedWith(owner))
}

func TestShareWithEmptyListRevokesAll(t *testing.T) {
	svc, uow, _ := newNoteServiceForTest()
	owner := uuid.New()
	old := uuid.New()
	note := seedNote(uow, owner, "Plan", "secret", old)

	err := svc.Share(context.Background(), owner, &dto.ShareNoteRequest{
		Id:         note.Id,
		SharedWith: []uuid.UUID{},
	})
	require.NoError(t, err)
	assert.Empty(t, uow.noteRepo.notes[note.Id].SharedWith)
}

func TestShareDeniedForRecipient(t *testing.T) {
	svc, uow, _ := newNoteServiceForTest()
	owner := uuid.New()
	recipient := uuid.New()
	note := seedNote(uow, owner, "Plan", "secret", recipient)

	err := svc.Share(context.Background(), recipient, &dto.ShareNoteRequest{
		Id:         note.Id,
		SharedWith: []uuid.UUID{uuid.New()},
	})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestSearchOwnedNotesOnly(t *testing.T) {
	svc, uow, _ := newNoteServiceForTest()
	me := uuid.New()
	other := uuid.New()

	mine := seedNote(uow, me, "Groceries", "milk,eggs")
	seedNote(uow, other, "Their list", "eggs and bacon", me)

	res, err := svc.Search(context.Background(), me, "egg")
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, mine.Id, res[0].Id)
}

func TestSearchIsCaseSensitive(t *testing.T) {
	svc, uow, _ := newNoteServiceForTest()
	me := uuid.New()
	seedNote(uow, me, "Groceries", "milk,Eggs")

	res, err := svc.Search(context.Background(), me, "egg")
	require.NoError(t, err)
	assert.Empty(t, res)

	res, err = svc.Search(context.Background(), me, "Egg")
	require.NoError(t, err)
	assert.Len(t, res, 1)
}

func TestListIncludesSharedInNotes(t *testing.T) {
	svc, uow, _ := newNoteServiceForTest()
	me := uuid.New()
	other := uuid.New()

	mine := seedNote(uow, me, "Mine", "a")
	sharedIn := seedNote(uow, other, "Theirs", "b", me)
	seedNote(uow, other, "Private", "c")

	res, err := svc.List(context.Background(), me)
	require.NoError(t, err)
	require.Len(t, res, 2)

	ids := []uuid.UUID{res[0].Id, res[1].Id}
	assert.ElementsMatch(t, []uuid.UUID{mine.Id, sharedIn.Id}, ids)
}

func TestActivityVisibleToOwnerAndRecipient(t *testing.T) {
	svc, uow, _ := newNoteServiceForTest()
	owner := uuid.New()
	recipient := uuid.New()
	stranger := uuid.New()
	note := seedNote(uow, owner, "Plan", "secret", recipient)

	uow.activityRepo.rows = append(uow.activityRepo.rows, &entity.NoteActivity{
		Id:        uuid.New(),
		NoteId:    note.Id,
		ActorId:   owner,
		Action:    entity.ActivityCreated,
		CreatedAt: time.Now(),
	})

	rows, err := svc.Activity(context.Background(), owner, note.Id)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = svc.Activity(context.Background(), recipient, note.Id)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = svc.Activity(context.Background(), stranger, note.Id)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
