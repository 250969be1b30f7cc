package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"go-gin-order-service/internal/core/config"
	"go-gin-order-service/internal/core/logger"
	"go-gin-order-service/pkg/mailer"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()

	if cfg.Mail.RabbitURL == "" || cfg.Mail.RabbitQueue == "" {
		log.Fatal("rabbitmq not configured")
	}
	if cfg.Mail.MailgunDomain == "" || cfg.Mail.MailgunAPIKey == "" || cfg.Mail.Sender == "" {
		log.Fatal("mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.Mail.RabbitURL)
	if err != nil {
		log.Fatal("amqp dial", zap.Error(err))
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal("amqp channel", zap.Error(err))
	}
	defer func() { _ = ch.Close() }()

	// prefetch 保证公平分发
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatal("qos", zap.Error(err))
	}
	if _, err := mailer.DeclareQueue(ch, cfg.Mail.RabbitQueue); err != nil {
		log.Fatal("queue declare", zap.Error(err))
	}
	msgs, err := ch.Consume(cfg.Mail.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatal("consume", zap.Error(err))
	}

	w := &mailer.Worker{
		Sender:  mailer.NewMailgun(cfg.Mail.MailgunDomain, cfg.Mail.MailgunAPIKey, cfg.Mail.Sender),
		Timeout: 15 * time.Second,
		Log:     log,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			w.Handle(ctx, msg)
		}
	}()

	log.Info("email worker listening", zap.String("queue", cfg.Mail.RabbitQueue))
	select {
	case <-ctx.Done():
	case <-done:
	}
	log.Info("shutting down")
	_ = ch.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
