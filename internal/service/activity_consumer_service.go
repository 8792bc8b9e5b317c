package service

import (
	"context"
	"encoding/json"
	"time"

	"collab-notepad-be/internal/dto"
	"collab-notepad-be/internal/entity"
	"collab-notepad-be/internal/pkg/logger"
	"collab-notepad-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IActivityConsumerService interface {
	Consume(ctx context.Context) error
}

// activityConsumerService drains the activity topic and persists one row per
// note mutation. It runs decoupled from the request path; a failed insert
// never surfaces to the user who made the change.
type activityConsumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewActivityConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) IActivityConsumerService {
	return &activityConsumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (cs *activityConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *activityConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishNoteActivityMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ActivityConsumer", "Failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // invalid payloads are not retriable
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	activity := entity.NoteActivity{
		Id:        uuid.New(),
		NoteId:    payload.NoteId,
		ActorId:   payload.ActorId,
		Action:    payload.Action,
		Detail:    payload.Detail,
		CreatedAt: time.Now(),
	}

	if err := uow.NoteActivityRepository().Create(ctx, &activity); err != nil {
		cs.logger.Error("ActivityConsumer", "Failed to persist activity", map[string]interface{}{"error": err.Error(), "note_id": payload.NoteId})
		msg.Nack()
		return
	}

	msg.Ack()
}
