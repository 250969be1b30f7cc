package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogMailerWritesEntry(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewLogMailer(zap.New(core))

	require.NoError(t, m.Send(context.Background(), "a@example.com", "Verify", "code 123456"))

	entries := logs.FilterMessage("email").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "a@example.com", fields["to"])
	assert.Equal(t, "Verify", fields["subject"])
}

func TestNewSelectsDriver(t *testing.T) {
	s, closeFn, err := New(Options{Driver: ""}, nil)
	require.NoError(t, err)
	assert.IsType(t, &LogMailer{}, s)
	closeFn()

	s, _, err = New(Options{Driver: "MAILGUN", MailgunDomain: "mg.example.com", MailgunAPIKey: "key", Sender: "no-reply@example.com"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Mailgun{}, s)

	_, _, err = New(Options{Driver: "mailgun"}, nil)
	assert.Error(t, err)

	_, _, err = New(Options{Driver: "rabbitmq"}, nil)
	assert.Error(t, err)

	_, _, err = New(Options{Driver: "carrier-pigeon"}, nil)
	assert.Error(t, err)
}

type capturePublisher struct {
	body any
	err  error
}

func (c *capturePublisher) PublishJSON(_ context.Context, body any) error {
	c.body = body
	return c.err
}

func TestQueueMailerPublishesJob(t *testing.T) {
	pub := &capturePublisher{}
	q := &QueueMailer{Publisher: pub}

	require.NoError(t, q.Send(context.Background(), "b@example.com", "Hello", "body"))
	assert.Equal(t, EmailJob{To: "b@example.com", Subject: "Hello", Text: "body"}, pub.body)

	pub.err = errors.New("channel closed")
	assert.Error(t, q.Send(context.Background(), "b@example.com", "Hello", "body"))
}

func TestDecodeJob(t *testing.T) {
	b, err := json.Marshal(EmailJob{To: "c@example.com", Subject: "s", Text: "t"})
	require.NoError(t, err)

	job, err := DecodeJob(b)
	require.NoError(t, err)
	assert.Equal(t, "c@example.com", job.To)

	_, err = DecodeJob([]byte(`{"subject":"s"}`))
	assert.Error(t, err)

	_, err = DecodeJob([]byte(`not json`))
	assert.Error(t, err)
}
