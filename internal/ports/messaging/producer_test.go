package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	destination string
	body        []byte
	err         error
}

func (c *captureSender) SendMessage(_ context.Context, destination string, body []byte) error {
	c.destination = destination
	c.body = body
	return c.err
}

func TestProducerPublish(t *testing.T) {
	t.Run("sync events go to the sync queue", func(t *testing.T) {
		sender := &captureSender{}
		producer := NewProducer(sender, "sync-queue", "mail-queue")

		event := CalendarSyncEvent{UserID: 42, Username: "jdoe", Year: 2025}
		require.NoError(t, producer.PublishSync(context.Background(), event))

		assert.Equal(t, "sync-queue", sender.destination)

		var decoded CalendarSyncEvent
		require.NoError(t, json.Unmarshal(sender.body, &decoded))
		assert.Equal(t, event, decoded)
	})

	t.Run("mail events go to the mail queue", func(t *testing.T) {
		sender := &captureSender{}
		producer := NewProducer(sender, "sync-queue", "mail-queue")

		event := ApprovalMailEvent{UserID: 42, Email: "jane@example.com", Action: MailActionApproved}
		require.NoError(t, producer.PublishMail(context.Background(), event))

		assert.Equal(t, "mail-queue", sender.destination)
	})

	t.Run("sender failure is wrapped", func(t *testing.T) {
		sender := &captureSender{err: errors.New("sqs down")}
		producer := NewProducer(sender, "sync-queue", "mail-queue")

		err := producer.PublishSync(context.Background(), CalendarSyncEvent{UserID: 42})
		assert.ErrorContains(t, err, "failed to send message")
	})

	t.Run("unmarshalable body fails fast", func(t *testing.T) {
		sender := &captureSender{}
		producer := NewProducer(sender, "sync-queue", "mail-queue")

		err := producer.PublishSync(context.Background(), make(chan int))
		assert.ErrorContains(t, err, "failed to marshal body")
		assert.Empty(t, sender.destination)
	})
}
