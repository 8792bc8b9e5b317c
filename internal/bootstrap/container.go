package bootstrap

import (
	"context"
	"log"
	"time"

	"collab-notepad-be/internal/config"
	"collab-notepad-be/internal/controller"
	"collab-notepad-be/internal/handler"
	"collab-notepad-be/internal/pkg/logger"
	"collab-notepad-be/internal/pkg/mailer"
	"collab-notepad-be/internal/repository/memory"
	"collab-notepad-be/internal/repository/unitofwork"
	"collab-notepad-be/internal/service"
	"collab-notepad-be/internal/websocket"
	pktNats "collab-notepad-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController controller.IAuthController
	NoteController controller.INoteController

	// Realtime
	CollabHandler *handler.CollabHandler
	WebSocketHub  *websocket.Hub

	// Background services (exposed for main.go to run)
	ActivityConsumerService service.IActivityConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. In-process event bus (activity pipeline)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS (optional: services tolerate a nil publisher)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis (optional: hub works single-instance without it)
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb = nil
	}

	// WebSocket hub (room registry + edit broadcaster)
	wsLogger := logger.NewIsolatedLogger("logs/collab.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Services
	refreshTokens := memory.NewRefreshTokenRepository(
		time.Duration(cfg.JWT.RefreshTTLMinutes) * time.Minute,
	)

	publisherService := service.NewPublisherService(cfg.App.ActivityTopic, pubSub)
	activityConsumer := service.NewActivityConsumerService(
		pubSub,
		cfg.App.ActivityTopic,
		uowFactory,
		sysLogger,
	)

	authService := service.NewAuthService(uowFactory, refreshTokens, cfg.JWT)
	noteService := service.NewNoteService(uowFactory, publisherService, natsPub, sysLogger)

	notifService := service.NewNotificationService(uowFactory, natsSub, wsHub, emailService, wsLogger)
	if natsSub != nil {
		go notifService.Start()
	}

	// 4. Controllers & handlers
	return &Container{
		AuthController: controller.NewAuthController(authService),
		NoteController: controller.NewNoteController(noteService),

		CollabHandler: handler.NewCollabHandler(wsHub, wsLogger),
		WebSocketHub:  wsHub,

		ActivityConsumerService: activityConsumer,
	}
}
