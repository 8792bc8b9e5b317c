package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"collab-notepad-be/internal/entity"
	"collab-notepad-be/internal/repository/specification"
	"collab-notepad-be/internal/repository/unitofwork"
	"collab-notepad-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.NoteRepository())
	assert.NotNil(t, uow.NoteActivityRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("User count: %d", count)
	})

	t.Run("Note CRUD And Sharing Round Trip", func(t *testing.T) {
		ctx := context.Background()

		owner := &entity.User{
			Id:           uuid.New(),
			Username:     "integration-" + uuid.New().String()[:8],
			Email:        "owner-" + uuid.New().String() + "@example.com",
			PasswordHash: "x",
			CreatedAt:    time.Now(),
		}
		err := uow.UserRepository().Create(ctx, owner)
		assert.NoError(t, err)

		recipient := uuid.New()

		note := &entity.Note{
			Id:        uuid.New(),
			Title:     "Integration note",
			Content:   "milk,eggs",
			OwnerId:   owner.Id,
			CreatedAt: time.Now(),
		}
		err = uow.NoteRepository().Create(ctx, note)
		assert.NoError(t, err)
		defer uow.NoteRepository().Delete(ctx, note.Id)

		// Share and verify the LIKE containment query finds it.
		note.SharedWith = []uuid.UUID{recipient}
		err = uow.NoteRepository().Update(ctx, note)
		assert.NoError(t, err)

		visible, err := uow.NoteRepository().FindAll(ctx, specification.VisibleToUser{UserID: recipient})
		assert.NoError(t, err)
		found := false
		for _, n := range visible {
			if n.Id == note.Id {
				found = true
				assert.True(t, n.IsSharedWith(recipient))
			}
		}
		assert.True(t, found, "shared note should be visible to the recipient")

		// Owned-only search must not surface the note for the recipient.
		hits, err := uow.NoteRepository().FindAll(ctx,
			specification.OwnedByUser{UserID: recipient},
			specification.ContentContains{Substring: "egg"},
		)
		assert.NoError(t, err)
		for _, n := range hits {
			assert.NotEqual(t, note.Id, n.Id)
		}

		// Case-sensitive search for the owner.
		hits, err = uow.NoteRepository().FindAll(ctx,
			specification.OwnedByUser{UserID: owner.Id},
			specification.ContentContains{Substring: "Egg"},
		)
		assert.NoError(t, err)
		for _, n := range hits {
			assert.NotEqual(t, note.Id, n.Id)
		}
	})

	t.Run("Transactional Activity Insert", func(t *testing.T) {
		ctx := context.Background()

		err := uow.Begin(ctx)
		assert.NoError(t, err)
		defer uow.Rollback()

		noteId := uuid.New()
		activity := &entity.NoteActivity{
			Id:        uuid.New(),
			NoteId:    noteId,
			ActorId:   uuid.New(),
			Action:    entity.ActivityCreated,
			CreatedAt: time.Now(),
		}
		err = uow.NoteActivityRepository().Create(ctx, activity)
		assert.NoError(t, err)

		rows, err := uow.NoteActivityRepository().FindAll(ctx, specification.ByNoteID{NoteID: noteId})
		assert.NoError(t, err)
		assert.Len(t, rows, 1)
	})
}
