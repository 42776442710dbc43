package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/example/gearshop/internal/catalog"
	"github.com/example/gearshop/internal/email"
	"github.com/example/gearshop/internal/infrastructure/kafka"
	"github.com/example/gearshop/internal/infrastructure/store"
	"github.com/example/gearshop/internal/notification"
	"github.com/example/gearshop/internal/user"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_ = godotenv.Load()

	kafkaBrokersStr := getEnv("KAFKA_BROKERS", "localhost:9092")
	kafkaBrokers := strings.Split(kafkaBrokersStr, ",")
	kafkaTopic := getEnv("KAFKA_TOPIC", "gearshop-events")
	consumerGroup := "email-notifier"

	smtpHost := getEnv("SMTP_HOST", "localhost")
	smtpPort := getEnv("SMTP_PORT", "1025")
	smtpFrom := getEnv("SMTP_FROM", "noreply@gearshop.example.com")
	supportAddr := getEnv("SUPPORT_EMAIL", "support@gearshop.example.com")

	log.Println("[Notifier] ========================================")
	log.Println("[Notifier] GearShop - Email Notification Service")
	log.Println("[Notifier] ========================================")
	log.Printf("[Notifier] Kafka: %v", kafkaBrokers)
	log.Printf("[Notifier] Topic: %s", kafkaTopic)
	log.Printf("[Notifier] Group: %s", consumerGroup)
	log.Printf("[Notifier] SMTP: %s:%s", smtpHost, smtpPort)
	log.Printf("[Notifier] From: %s", smtpFrom)

	// User lookups for merge receipts; shared PostgreSQL when configured.
	var users user.StoreInterface = user.NewMemoryStore()
	if connStr := os.Getenv("DATABASE_URL"); connStr != "" {
		db, err := store.ConnectPostgres(connStr)
		if err != nil {
			log.Fatalf("[Notifier] Failed to connect to PostgreSQL: %v", err)
		}
		defer db.Close()
		users = user.NewPostgresStore(db)
		log.Println("[Notifier] Connected to PostgreSQL")
	}

	emailSvc := email.NewService(smtpHost, smtpPort, smtpFrom)
	handler := notification.NewHandler(emailSvc, users, catalog.NewMemoryCatalog(), supportAddr)

	consumer := kafka.NewConsumer(kafkaBrokers, kafkaTopic, consumerGroup)
	defer consumer.Close()

	go func() {
		log.Println("[Notifier] Starting event consumer...")
		if err := consumer.Consume(ctx, handler.HandleEvent); err != nil {
			log.Printf("[Notifier] Consumer error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Notifier] Shutting down...")
	cancel()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
