package mailer

import (
	"context"
	"errors"
	"net/http"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// HTMLSender is what the worker hands decoded jobs to; *Mailgun satisfies it.
type HTMLSender interface {
	SendHTML(ctx context.Context, to, subject, text, html string) error
}

// Disposition is what Worker.Handle did with a delivery.
type Disposition int

const (
	Acked    Disposition = iota
	Requeued             // 暂时性失败，重新入队一次
	Dropped              // 丢弃（队列配置了 DLX 时进入死信队列）
)

// Worker turns queued EmailJobs into sends. A failed send is requeued once;
// a second failure, or a rejection Mailgun will never accept, drops the message.
type Worker struct {
	Sender  HTMLSender
	Timeout time.Duration
	Log     *zap.Logger
}

func (w *Worker) Handle(ctx context.Context, d amqp.Delivery) Disposition {
	l := w.Log
	if l == nil {
		l = zap.NewNop()
	}
	job, err := DecodeJob(d.Body)
	if err != nil {
		l.Warn("bad message", zap.Error(err))
		_ = d.Nack(false, false)
		return Dropped
	}

	timeout := w.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c, cancel := context.WithTimeout(ctx, timeout)
	err = w.Sender.SendHTML(c, job.To, job.Subject, job.Text, job.HTML)
	cancel()

	switch {
	case err == nil:
		_ = d.Ack(false)
		return Acked
	case Permanent(err):
		l.Error("send rejected, dropping", zap.String("to", job.To), zap.Error(err))
		_ = d.Nack(false, false)
		return Dropped
	case d.Redelivered:
		l.Error("send failed again, dropping", zap.String("to", job.To), zap.Error(err))
		_ = d.Nack(false, false)
		return Dropped
	default:
		l.Warn("send failed, requeue", zap.String("to", job.To), zap.Error(err))
		_ = d.Nack(false, true)
		return Requeued
	}
}

// Permanent reports a Mailgun 4xx rejection that retrying cannot fix.
// 408 and 429 are retryable.
func Permanent(err error) bool {
	var ue *mg.UnexpectedResponseError
	if !errors.As(err, &ue) {
		return false
	}
	switch ue.Actual {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return ue.Actual >= 400 && ue.Actual < 500
}
