// Package mailer delivers transactional email. Three transports are
// available: a zap-backed log sink for local work, Mailgun for direct sends,
// and a RabbitMQ queue drained by cmd/email_worker.
package mailer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	DriverLog      = "log"
	DriverMailgun  = "mailgun"
	DriverRabbitMQ = "rabbitmq"
)

// Sender is satisfied by every transport in this package.
type Sender interface {
	Send(ctx context.Context, to, subject, text string) error
}

type Options struct {
	Driver        string
	Sender        string
	MailgunDomain string
	MailgunAPIKey string
	RabbitURL     string
	RabbitQueue   string
}

// New 按 driver 选择发送方式；返回的 closer 总是非 nil
func New(opt Options, l *zap.Logger) (Sender, func(), error) {
	noop := func() {}
	switch strings.ToLower(strings.TrimSpace(opt.Driver)) {
	case "", DriverLog:
		return NewLogMailer(l), noop, nil
	case DriverMailgun:
		if opt.MailgunDomain == "" || opt.MailgunAPIKey == "" || opt.Sender == "" {
			return nil, noop, fmt.Errorf("mailgun not configured")
		}
		return NewMailgun(opt.MailgunDomain, opt.MailgunAPIKey, opt.Sender), noop, nil
	case DriverRabbitMQ:
		if opt.RabbitURL == "" || opt.RabbitQueue == "" {
			return nil, noop, fmt.Errorf("rabbitmq not configured")
		}
		pub, err := NewRabbitPublisher(opt.RabbitURL, opt.RabbitQueue)
		if err != nil {
			return nil, noop, fmt.Errorf("rabbitmq: %w", err)
		}
		return &QueueMailer{Publisher: pub}, pub.Close, nil
	default:
		return nil, noop, fmt.Errorf("unsupported mail driver: %s", opt.Driver)
	}
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(l *zap.Logger) *LogMailer {
	if l == nil {
		l = zap.NewNop()
	}
	return &LogMailer{log: l}
}

func (m *LogMailer) Send(_ context.Context, to, subject, text string) error {
	m.log.Info("email",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("text", text),
	)
	return nil
}
