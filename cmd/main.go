package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/skynetfrank/user-service/internal/adapter"
	"github.com/skynetfrank/user-service/internal/auth"
	"github.com/skynetfrank/user-service/internal/config"
	"github.com/skynetfrank/user-service/internal/mailer"
	"github.com/skynetfrank/user-service/internal/repository"
	"github.com/skynetfrank/user-service/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()

	// Load configuration; missing MONGODB_URI or JWT_SECRET is fatal.
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Connect to MongoDB
	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err = mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error("Failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	db := mongoClient.Database(cfg.MongoDB)

	// Connect to Redis (sign-in throttle counters)
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if _, err = redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	jwter := &auth.JWTer{Secret: []byte(cfg.JWTSecret)}

	userRepo := repository.NewUserRepository(db, redisClient, logger)
	userUsecase := usecase.NewUserUsecase(userRepo, userRepo, jwter, buildMailer(cfg, logger), logger)
	userHandler := adapter.NewUserHandler(userUsecase, logger)

	router := adapter.NewRouter(logger, userHandler, jwter)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting User Service", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to serve HTTP", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("HTTP shutdown error", zap.Error(err))
	}
	logger.Info("User Service stopped gracefully")
}

// buildMailer picks a mail driver from config, or none.
func buildMailer(cfg *config.Config, logger *zap.Logger) mailer.Mailer {
	switch cfg.MailDriver {
	case "smtp":
		return mailer.NewSMTPMailerService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom, cfg.MailFromName, logger)
	case "mailersend":
		return mailer.NewMailerSendService(cfg.MailerSendAPIKey, cfg.MailFrom, cfg.MailFromName, logger)
	default:
		return nil
	}
}
