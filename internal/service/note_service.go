package service

import (
	"context"
	"encoding/json"
	"time"

	"collab-notepad-be/internal/dto"
	"collab-notepad-be/internal/entity"
	"collab-notepad-be/internal/pkg/apperrors"
	"collab-notepad-be/internal/pkg/logger"
	"collab-notepad-be/internal/repository/specification"
	"collab-notepad-be/internal/repository/unitofwork"
	"collab-notepad-be/pkg/access"
	"collab-notepad-be/pkg/events"
	pktNats "collab-notepad-be/pkg/nats"

	"github.com/google/uuid"
)

type INoteService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.NoteResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NoteResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.UpdateNoteResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	ToggleLock(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ToggleLockResponse, error)
	Share(ctx context.Context, userId uuid.UUID, req *dto.ShareNoteRequest) error
	Search(ctx context.Context, userId uuid.UUID, query string) ([]*dto.NoteResponse, error)
	Activity(ctx context.Context, userId uuid.UUID, id uuid.UUID) ([]*dto.NoteActivityResponse, error)
}

type noteService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	verifier         *access.Verifier
	logger           logger.ILogger
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) INoteService {
	return &noteService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		verifier:         access.NewVerifier(),
		logger:           log,
	}
}

func (s *noteService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note := entity.Note{
		Id:        uuid.New(),
		Title:     req.Title,
		Content:   req.Content,
		Category:  req.Category,
		OwnerId:   userId,
		CreatedAt: time.Now(),
	}

	if err := uow.NoteRepository().Create(ctx, &note); err != nil {
		return nil, err
	}

	s.publishActivity(ctx, note.Id, userId, entity.ActivityCreated, nil)
	s.publishEvent(ctx, "NOTE_CREATED", map[string]interface{}{
		"note_id":  note.Id.String(),
		"title":    note.Title,
		"owner_id": userId.String(),
	})

	return &dto.CreateNoteResponse{Id: note.Id}, nil
}

func (s *noteService) List(ctx context.Context, userId uuid.UUID) ([]*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.VisibleToUser{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	return toNoteResponses(notes), nil
}

func (s *noteService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NoteResponse, error) {
	note, err := s.findAuthorized(ctx, userId, id, access.OpRead)
	if err != nil {
		return nil, err
	}
	return toNoteResponse(note), nil
}

func (s *noteService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.UpdateNoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note, err := s.findAuthorizedWith(ctx, uow, userId, req.Id, access.OpUpdate)
	if err != nil {
		return nil, err
	}

	// The locked flag is stored and reported but not enforced here; the
	// legacy update path behaves the same way.
	now := time.Now()
	note.Title = req.Title
	note.Content = req.Content
	note.Category = req.Category
	note.UpdatedAt = &now

	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return nil, err
	}

	s.publishActivity(ctx, note.Id, userId, entity.ActivityUpdated, nil)
	s.publishEvent(ctx, "NOTE_UPDATED", map[string]interface{}{
		"note_id":  note.Id.String(),
		"owner_id": note.OwnerId.String(),
	})

	return &dto.UpdateNoteResponse{Id: note.Id}, nil
}

func (s *noteService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note, err := s.findAuthorizedWith(ctx, uow, userId, id, access.OpDelete)
	if err != nil {
		return err
	}

	// Deletion is permanent and immediate; there is no soft-delete.
	if err := uow.NoteRepository().Delete(ctx, note.Id); err != nil {
		return err
	}

	s.publishActivity(ctx, note.Id, userId, entity.ActivityDeleted, nil)
	s.publishEvent(ctx, "NOTE_DELETED", map[string]interface{}{
		"note_id":  note.Id.String(),
		"owner_id": note.OwnerId.String(),
	})

	return nil
}

func (s *noteService) ToggleLock(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ToggleLockResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note, err := s.findAuthorizedWith(ctx, uow, userId, id, access.OpLock)
	if err != nil {
		return nil, err
	}

	note.Locked = !note.Locked
	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return nil, err
	}

	action := entity.ActivityUnlocked
	if note.Locked {
		action = entity.ActivityLocked
	}
	s.publishActivity(ctx, note.Id, userId, action, nil)

	return &dto.ToggleLockResponse{Id: note.Id, Locked: note.Locked}, nil
}

func (s *noteService) Share(ctx context.Context, userId uuid.UUID, req *dto.ShareNoteRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note, err := s.findAuthorizedWith(ctx, uow, userId, req.Id, access.OpShare)
	if err != nil {
		return err
	}

	// The recipient list replaces the previous set. The owner never appears
	// in shared_with; owner access is implicit.
	seen := make(map[uuid.UUID]struct{}, len(req.SharedWith))
	recipients := make([]uuid.UUID, 0, len(req.SharedWith))
	for _, id := range req.SharedWith {
		if id == note.OwnerId || id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		recipients = append(recipients, id)
	}
	note.SharedWith = recipients

	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return err
	}

	recipientStrs := make([]string, len(recipients))
	for i, id := range recipients {
		recipientStrs[i] = id.String()
	}

	s.publishActivity(ctx, note.Id, userId, entity.ActivityShared, map[string]interface{}{
		"recipients": recipientStrs,
	})
	s.publishEvent(ctx, "NOTE_SHARED", map[string]interface{}{
		"note_id":    note.Id.String(),
		"title":      note.Title,
		"owner_id":   note.OwnerId.String(),
		"recipients": recipientStrs,
	})

	return nil
}

func (s *noteService) Search(ctx context.Context, userId uuid.UUID, query string) ([]*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Search is narrower than listing: owned notes only, shared-in notes
	// are excluded even when they match.
	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.OwnedByUser{UserID: userId},
		specification.ContentContains{Substring: query},
	)
	if err != nil {
		return nil, err
	}

	return toNoteResponses(notes), nil
}

func (s *noteService) Activity(ctx context.Context, userId uuid.UUID, id uuid.UUID) ([]*dto.NoteActivityResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.findAuthorizedWith(ctx, uow, userId, id, access.OpRead); err != nil {
		return nil, err
	}

	rows, err := uow.NoteActivityRepository().FindAll(ctx,
		specification.ByNoteID{NoteID: id},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.NoteActivityResponse, len(rows))
	for i, a := range rows {
		res[i] = &dto.NoteActivityResponse{
			Id:        a.Id,
			ActorId:   a.ActorId,
			Action:    a.Action,
			Detail:    a.Detail,
			CreatedAt: a.CreatedAt,
		}
	}
	return res, nil
}

// findAuthorized loads the note and runs the access check. Existence is
// decided first so a missing note is NotFound even for strangers.
func (s *noteService) findAuthorized(ctx context.Context, userId, id uuid.UUID, op access.Operation) (*entity.Note, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return s.findAuthorizedWith(ctx, uow, userId, id, op)
}

func (s *noteService) findAuthorizedWith(ctx context.Context, uow unitofwork.UnitOfWork, userId, id uuid.UUID, op access.Operation) (*entity.Note, error) {
	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, apperrors.ErrNotFound
	}
	if err := s.verifier.Authorize(userId, note, op); err != nil {
		return nil, err
	}
	return note, nil
}

// publishActivity feeds the in-process activity pipeline. Best-effort: the
// activity log is auxiliary and never fails the request.
func (s *noteService) publishActivity(ctx context.Context, noteId, actorId uuid.UUID, action string, detail map[string]interface{}) {
	if s.publisherService == nil {
		return
	}

	payload, err := json.Marshal(dto.PublishNoteActivityMessage{
		NoteId:  noteId,
		ActorId: actorId,
		Action:  action,
		Detail:  detail,
	})
	if err != nil {
		return
	}

	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.logger.Warn("NoteService", "Failed to publish activity message", map[string]interface{}{"error": err.Error(), "action": action})
	}
}

func (s *noteService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}

	evt := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("NoteService", "Failed to publish event", map[string]interface{}{"error": err.Error(), "type": eventType})
	}
}

func toNoteResponse(n *entity.Note) *dto.NoteResponse {
	shared := n.SharedWith
	if shared == nil {
		shared = []uuid.UUID{}
	}
	return &dto.NoteResponse{
		Id:         n.Id,
		Title:      n.Title,
		Content:    n.Content,
		Locked:     n.Locked,
		OwnerId:    n.OwnerId,
		SharedWith: shared,
		Category:   n.Category,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
	}
}

func toNoteResponses(notes []*entity.Note) []*dto.NoteResponse {
	res := make([]*dto.NoteResponse, len(notes))
	for i, n := range notes {
		res[i] = toNoteResponse(n)
	}
	return res
}
