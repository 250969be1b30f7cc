package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	mg "github.com/mailgun/mailgun-go/v4"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ackRecord struct {
	acked, nacked, requeue bool
}

func (a *ackRecord) Ack(uint64, bool) error { a.acked = true; return nil }
func (a *ackRecord) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked, a.requeue = true, requeue
	return nil
}
func (a *ackRecord) Reject(_ uint64, requeue bool) error {
	a.nacked, a.requeue = true, requeue
	return nil
}

type stubSender struct{ err error }

func (s stubSender) SendHTML(context.Context, string, string, string, string) error { return s.err }

func delivery(t *testing.T, redelivered bool) (amqp.Delivery, *ackRecord) {
	t.Helper()
	body, err := json.Marshal(EmailJob{To: "a@example.com", Subject: "Verify", Text: "123456"})
	require.NoError(t, err)
	rec := &ackRecord{}
	return amqp.Delivery{Acknowledger: rec, Body: body, Redelivered: redelivered}, rec
}

func TestWorkerHandle(t *testing.T) {
	transient := errors.New("connection reset")
	rejected := fmt.Errorf("send: %w", &mg.UnexpectedResponseError{Actual: http.StatusBadRequest})
	throttled := &mg.UnexpectedResponseError{Actual: http.StatusTooManyRequests}

	cases := []struct {
		name        string
		err         error
		redelivered bool
		want        Disposition
		requeue     bool
	}{
		{"sent", nil, false, Acked, false},
		{"first transient failure requeues", transient, false, Requeued, true},
		{"second failure drops", transient, true, Dropped, false},
		{"rejection drops at once", rejected, false, Dropped, false},
		{"throttling is retried", throttled, false, Requeued, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, rec := delivery(t, tc.redelivered)
			w := &Worker{Sender: stubSender{err: tc.err}}

			assert.Equal(t, tc.want, w.Handle(context.Background(), d))
			if tc.want == Acked {
				assert.True(t, rec.acked)
				return
			}
			assert.True(t, rec.nacked)
			assert.Equal(t, tc.requeue, rec.requeue)
		})
	}
}

func TestWorkerDropsUndecodableJob(t *testing.T) {
	rec := &ackRecord{}
	w := &Worker{Sender: stubSender{}}
	got := w.Handle(context.Background(), amqp.Delivery{Acknowledger: rec, Body: []byte("{")})
	assert.Equal(t, Dropped, got)
	assert.True(t, rec.nacked)
	assert.False(t, rec.requeue)
}
