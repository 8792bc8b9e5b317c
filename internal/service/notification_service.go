package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"collab-notepad-be/internal/pkg/logger"
	"collab-notepad-be/internal/pkg/mailer"
	"collab-notepad-be/internal/repository/specification"
	"collab-notepad-be/internal/repository/unitofwork"
	"collab-notepad-be/pkg/events"
	pktNats "collab-notepad-be/pkg/nats"

	"github.com/google/uuid"
)

// NotificationDelivery defines how to push real-time updates.
// Implemented by the websocket Hub.
type NotificationDelivery interface {
	SendToUser(userID uuid.UUID, payload []byte)
}

// NotificationService turns domain events from the bus into pushes to the
// affected users. Today that means telling share recipients a note was
// shared with them, over the websocket and (best-effort) by email.
type NotificationService struct {
	uowFactory unitofwork.RepositoryFactory
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	mailer     mailer.IEmailService
	logger     logger.ILogger
}

func NewNotificationService(
	uowFactory unitofwork.RepositoryFactory,
	sub *pktNats.Subscriber,
	delivery NotificationDelivery,
	email mailer.IEmailService,
	log logger.ILogger,
) *NotificationService {
	return &NotificationService{
		uowFactory: uowFactory,
		subscriber: sub,
		delivery:   delivery,
		mailer:     email,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	typeCode := strings.TrimPrefix(event.EventType(), "events.")

	switch typeCode {
	case "NOTE_SHARED":
		return s.handleNoteShared(ctx, event.Payload())
	default:
		// Other note events have no user-facing notification yet.
		return nil
	}
}

func (s *NotificationService) handleNoteShared(ctx context.Context, payload map[string]interface{}) error {
	title, _ := payload["title"].(string)
	noteIdStr, _ := payload["note_id"].(string)
	ownerIdStr, _ := payload["owner_id"].(string)

	ownerId, err := uuid.Parse(ownerIdStr)
	if err != nil {
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	owner, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: ownerId})
	if err != nil || owner == nil {
		return err
	}

	rawRecipients, _ := payload["recipients"].([]interface{})
	for _, raw := range rawRecipients {
		idStr, ok := raw.(string)
		if !ok {
			continue
		}
		recipientId, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}

		frame, _ := json.Marshal(map[string]interface{}{
			"type": "notification",
			"data": map[string]interface{}{
				"code":      "NOTE_SHARED",
				"note_id":   noteIdStr,
				"title":     title,
				"shared_by": owner.Username,
				"at":        time.Now(),
			},
		})
		if s.delivery != nil {
			s.delivery.SendToUser(recipientId, frame)
		}

		recipient, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: recipientId})
		if err != nil || recipient == nil {
			continue
		}
		if err := s.mailer.SendShareNotice(recipient.Email, title, owner.Username); err != nil {
			s.logger.Warn("NotificationService", "Share email failed", map[string]interface{}{"error": err.Error(), "user_id": recipientId})
		}
	}

	return nil
}
