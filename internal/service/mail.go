package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"go-gin-order-service/internal/core/metrics"
)

const mailTimeout = 15 * time.Second

// notifier sends mail in the background; the caller never sees the outcome.
type notifier struct {
	mailer Mailer
	log    *zap.Logger
}

func (n notifier) send(to, subject, body string) {
	if n.mailer == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()
		if err := n.mailer.Send(ctx, to, subject, body); err != nil {
			metrics.EmailFailures.Inc()
			n.log.Warn("send email failed", zap.String("to", to), zap.String("subject", subject), zap.Error(err))
		}
	}()
}
