package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// EmailJob is the JSON payload put on the queue.
type EmailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html,omitempty"`
}

func (j EmailJob) Validate() error {
	if strings.TrimSpace(j.To) == "" {
		return fmt.Errorf("email job: missing recipient")
	}
	if j.Subject == "" && j.Text == "" && j.HTML == "" {
		return fmt.Errorf("email job: empty message")
	}
	return nil
}

func DecodeJob(body []byte) (EmailJob, error) {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return EmailJob{}, fmt.Errorf("email job: %w", err)
	}
	return job, job.Validate()
}

type publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueMailer hands messages to the email worker.
type QueueMailer struct {
	Publisher publisher
}

func (q *QueueMailer) Send(ctx context.Context, to, subject, text string) error {
	return q.Publisher.PublishJSON(ctx, EmailJob{To: to, Subject: subject, Text: text})
}

// RabbitPublisher wraps an AMQP channel and a durable queue.
type RabbitPublisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	Queue string
}

func NewRabbitPublisher(url, queue string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err = DeclareQueue(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &RabbitPublisher{conn: conn, ch: ch, Queue: queue}, nil
}

// DeclareQueue declares the durable job queue; publisher and worker share it.
func DeclareQueue(ch *amqp.Channel, queue string) (amqp.Queue, error) {
	return ch.QueueDeclare(queue, true, false, false, false, nil)
}

func (p *RabbitPublisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

func (p *RabbitPublisher) PublishJSON(ctx context.Context, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.Queue, // routing key = queue
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         b,
		},
	)
}
