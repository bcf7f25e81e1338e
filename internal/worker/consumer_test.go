package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
)

type fakeSQSClient struct {
	deleted            int
	visibilityChanges  []int32
	receiveMessageFunc func() (*sqs.ReceiveMessageOutput, error)
}

func (f *fakeSQSClient) ReceiveMessage(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	if f.receiveMessageFunc != nil {
		return f.receiveMessageFunc()
	}
	return &sqs.ReceiveMessageOutput{}, nil
}

func (f *fakeSQSClient) DeleteMessage(_ context.Context, _ *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleted++
	return &sqs.DeleteMessageOutput{}, nil
}

func (f *fakeSQSClient) ChangeMessageVisibility(_ context.Context, params *sqs.ChangeMessageVisibilityInput, _ ...func(*sqs.Options)) (*sqs.ChangeMessageVisibilityOutput, error) {
	f.visibilityChanges = append(f.visibilityChanges, params.VisibilityTimeout)
	return &sqs.ChangeMessageVisibilityOutput{}, nil
}

type processorFunc func(ctx context.Context, msg types.Message) (bool, int32, error)

func (f processorFunc) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	return f(ctx, msg)
}

func testMessage() types.Message {
	return types.Message{
		MessageId:     aws.String("msg-1"),
		Body:          aws.String("{}"),
		ReceiptHandle: aws.String("receipt-1"),
	}
}

func TestHandleSingleMessage(t *testing.T) {
	t.Run("deletes the message on success", func(t *testing.T) {
		client := &fakeSQSClient{}
		w := NewWorker(client, "queue-url", processorFunc(func(_ context.Context, _ types.Message) (bool, int32, error) {
			return false, 0, nil
		}))

		w.handleSingleMessage(context.Background(), testMessage())

		assert.Equal(t, 1, client.deleted)
		assert.Empty(t, client.visibilityChanges)
	})

	t.Run("schedules a retry via visibility timeout", func(t *testing.T) {
		client := &fakeSQSClient{}
		w := NewWorker(client, "queue-url", processorFunc(func(_ context.Context, _ types.Message) (bool, int32, error) {
			return true, 30, errors.New("transient")
		}))

		w.handleSingleMessage(context.Background(), testMessage())

		assert.Zero(t, client.deleted)
		assert.Equal(t, []int32{30}, client.visibilityChanges)
	})

	t.Run("unrecoverable errors neither delete nor retry", func(t *testing.T) {
		client := &fakeSQSClient{}
		w := NewWorker(client, "queue-url", processorFunc(func(_ context.Context, _ types.Message) (bool, int32, error) {
			return false, 0, errors.New("bad message")
		}))

		w.handleSingleMessage(context.Background(), testMessage())

		assert.Zero(t, client.deleted)
		assert.Empty(t, client.visibilityChanges)
	})
}

func TestReceiveCount(t *testing.T) {
	t.Run("defaults to one without the attribute", func(t *testing.T) {
		assert.Equal(t, 1, ReceiveCount(testMessage()))
	})

	t.Run("parses the attribute", func(t *testing.T) {
		msg := testMessage()
		msg.Attributes = map[string]string{
			string(types.MessageSystemAttributeNameApproximateReceiveCount): "4",
		}
		assert.Equal(t, 4, ReceiveCount(msg))
	})

	t.Run("garbage falls back to one", func(t *testing.T) {
		msg := testMessage()
		msg.Attributes = map[string]string{
			string(types.MessageSystemAttributeNameApproximateReceiveCount): "many",
		}
		assert.Equal(t, 1, ReceiveCount(msg))
	})
}
