package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"realtime_chat_service/internal/chat/app"
	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/internal/chat/repository"
	"realtime_chat_service/internal/chat/router"
	"realtime_chat_service/pkg/config"
	"realtime_chat_service/pkg/database"
	"realtime_chat_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ChatService, config.EnvConfig.ChatServiceLogPath)
	cfg := config.LoadConfig[config.Chat](config.EnvConfig.ChatService, config.EnvConfig.ChatServiceYAMLPath)

	ctx := context.Background()

	// mongo holds users, rooms and messages
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.Mongo.User, cfg.Mongo.Password, cfg.Mongo.Host, cfg.Mongo.Port)
	mongo, err := database.NewMongoDB(ctx,
		database.Connection{
			ConnectStr:    uri,
			RetryCount:    cfg.Mongo.RetryCount,
			RetryInterval: time.Duration(cfg.Mongo.RetryInterval),
		},
		cfg.Mongo.Database)
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to mongoDB database after retries",
			zap.String("address", fmt.Sprintf("[%s]", uri)),
			zap.Error(err),
		)
	}
	defer mongo.Close(ctx)

	// redis backs the session cache and the broadcast mirror
	masterName, sentinel := config.GetRedisSetting()
	redisClient, err := database.NewRedisClient(masterName, sentinel, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}

	// minio stores message attachments
	minioClient, err := database.NewMinIOConnection(database.MinIOConnection{
		Endpoint:      cfg.MinIO.Endpoint,
		User:          cfg.MinIO.User,
		Password:      cfg.MinIO.Password,
		BucketName:    cfg.MinIO.Bucket,
		UseSSL:        cfg.MinIO.UseSSL,
		RetryCount:    cfg.MinIO.RetryCount,
		RetryInterval: time.Duration(cfg.MinIO.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect minio err : %v", err))
	}

	// kafka carries the message archive feed; the service runs without it
	var archive app.MessageArchive
	kafkaWriter, err := database.NewKafkaWriterWithRetry(database.KafkaConnection{
		Brokers:       cfg.Kafka.Brokers,
		Topic:         cfg.Kafka.Topic,
		RetryCount:    cfg.Kafka.RetryCount,
		RetryInterval: time.Duration(cfg.Kafka.RetryInterval),
	})
	if err != nil {
		logger.Log.Warn(fmt.Sprintf("kafka unavailable, archive feed disabled : %v", err))
	} else {
		archive = kafkaWriter
		defer kafkaWriter.Close()
	}

	userRepo := repository.NewMongoUserRepository(mongo.Database)
	roomRepo := repository.NewMongoRoomRepository(mongo.Database)
	msgRepo := repository.NewMongoMessageRepository(mongo.Database)
	pubsub := repository.NewRedisPubSub(redisClient)
	sessionRepo := database.NewRedisRepository[domain.Session](redisClient)

	registry := app.NewSessionRegistry()
	wsRouter := app.NewRoomRouter(registry, pubsub)
	presence := app.NewPresenceTracker(userRepo, wsRouter)
	typing := app.NewTypingTracker(wsRouter)

	sessionTTL := time.Duration(cfg.Session.TTLMinutes) * time.Minute
	authUC := app.NewAuthUseCase(userRepo, sessionRepo, sessionTTL, config.EnvConfig.ChatService)
	messageUC := app.NewMessageUseCase(msgRepo, userRepo, archive)
	roomUC := app.NewRoomUseCase(roomRepo)

	dispatcher := app.NewDispatcher(authUC, messageUC, roomUC, wsRouter, typing, cfg.DefaultRoom)
	wsHandler := app.NewChatWebsocketHandler(dispatcher, registry, wsRouter, presence, typing, authUC, cfg.DefaultRoom)
	uploadHandler := app.NewUploadHandler(minioClient)

	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.ChatServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	router.RegisterRoutes(r, wsHandler, uploadHandler)

	port := ":" + cfg.Port
	log.Printf("Chat Service listening on %s", port)
	if err := r.Listen(port); err != nil {
		log.Fatalf("Failed to start Fiber: %v", err)
	}
}
