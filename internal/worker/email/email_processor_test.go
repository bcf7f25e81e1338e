package email

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmailService struct {
	to     string
	action string
	dates  []string
	err    error
}

func (s *stubEmailService) SendApprovalMail(_ context.Context, to, _ string, action string, dates []string) error {
	s.to = to
	s.action = action
	s.dates = dates
	return s.err
}

func TestEmailProcessorProcess(t *testing.T) {
	body := `{"userId":42,"displayName":"Jane Doe","email":"jane@example.com","action":"approved","dates":["2025-03-10"]}`

	t.Run("sends the notification", func(t *testing.T) {
		service := &stubEmailService{}
		processor := NewProcessor(service)

		msg := types.Message{Body: aws.String(body)}
		retry, delay, err := processor.Process(context.Background(), msg)

		require.NoError(t, err)
		assert.False(t, retry)
		assert.Zero(t, delay)
		assert.Equal(t, "jane@example.com", service.to)
		assert.Equal(t, "approved", service.action)
		assert.Equal(t, []string{"2025-03-10"}, service.dates)
	})

	t.Run("malformed message is not retried", func(t *testing.T) {
		processor := NewProcessor(&stubEmailService{})

		msg := types.Message{Body: aws.String("not json")}
		retry, _, err := processor.Process(context.Background(), msg)

		assert.Error(t, err)
		assert.False(t, retry)
	})

	t.Run("send failure is retried with backoff", func(t *testing.T) {
		processor := NewProcessor(&stubEmailService{err: errors.New("ses down")})

		msg := types.Message{
			Body: aws.String(body),
			Attributes: map[string]string{
				string(types.MessageSystemAttributeNameApproximateReceiveCount): "3",
			},
		}
		retry, delay, err := processor.Process(context.Background(), msg)

		assert.Error(t, err)
		assert.True(t, retry)
		assert.Equal(t, int32(80), delay)
	})
}
