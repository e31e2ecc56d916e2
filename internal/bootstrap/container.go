package bootstrap

import (
	"context"
	"log"
	"time"

	"exploresync-be/internal/config"
	"exploresync-be/internal/handler"
	"exploresync-be/internal/pkg/logger"
	"exploresync-be/internal/repository/implementation"
	"exploresync-be/internal/service"
	"exploresync-be/internal/session"

	pktNats "exploresync-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const activityTopic = "group.activity"

type Container struct {
	// WebSockets & Session
	SessionHandler *handler.SessionHandler
	SessionHub     *session.Hub

	// Background Services (Exposed for main.go to run)
	ActivityConsumer service.IActivityConsumer
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
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
	}

	// 3. Repositories
	messageRepo := implementation.NewMessageRepository(db)
	notificationRepo := implementation.NewNotificationRepository(db)
	locationRepo := implementation.NewLocationRepository(db)
	counterRepo := implementation.NewCounterRepository(db)
	groupRepo := implementation.NewGroupRepository(db)
	userRepo := implementation.NewUserRepository(db)
	systemLogRepo := implementation.NewSystemLogRepository(db)

	// 4. Services
	groupService := service.NewGroupService(groupRepo, time.Duration(cfg.App.GroupCacheTTLSecs)*time.Second)
	chatService := service.NewChatService(messageRepo, groupService, natsPub, sysLogger)
	notificationService := service.NewGroupNotificationService(notificationRepo, groupService, natsPub, sysLogger)
	locationService := service.NewLocationService(locationRepo, userRepo, groupService, natsPub, sysLogger)
	counterService := service.NewCounterService(counterRepo, sysLogger)

	activityPublisher := service.NewActivityPublisher(pubSub, activityTopic)
	activityConsumer := service.NewActivityConsumer(pubSub, activityTopic, groupRepo)

	// 5. Session Hub
	sessionLogger := logger.NewIsolatedLogger(cfg.App.SessionLogFilePath)
	hub := session.NewHub(
		chatService,
		notificationService,
		locationService,
		counterService,
		activityPublisher,
		rdb,
		sessionLogger,
	)
	go hub.Run()

	// Audit worker
	if natsSub != nil {
		auditService := service.NewAuditService(systemLogRepo, natsSub, sysLogger)
		go auditService.Start()
	}

	// 6. Handlers
	sessionHandler := handler.NewSessionHandler(hub, locationService, sessionLogger)

	return &Container{
		SessionHandler:   sessionHandler,
		SessionHub:       hub,
		ActivityConsumer: activityConsumer,
	}
}
