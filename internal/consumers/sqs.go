package consumers

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"opensms/internal/settings"
)

// SQSAPI is the slice of the SQS client the queue consumer needs.
type SQSAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Queue pulls a single carrier payload off an SQS queue. Deployments that
// front their webhooks with a queue register this instead of (or after)
// the HTTP body consumer. The message is deleted once its body has been
// handed to the chain; redelivery of a half-processed payload is the
// queue's redrive policy's problem, not ours.
type Queue struct {
	SQS      SQSAPI
	QueueURL string
}

func (q *Queue) Name() string { return "sqs_queue" }

func (q *Queue) Consume(ctx context.Context, _ settings.Source) ([]byte, error) {
	out, err := q.SQS.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            &q.QueueURL,
		MaxNumberOfMessages: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(out.Messages) == 0 {
		return nil, nil
	}
	m := out.Messages[0]
	if m.Body == nil || *m.Body == "" {
		_, _ = q.SQS.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      &q.QueueURL,
			ReceiptHandle: m.ReceiptHandle,
		})
		return nil, nil
	}
	raw := []byte(*m.Body)
	_, _ = q.SQS.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      &q.QueueURL,
		ReceiptHandle: m.ReceiptHandle,
	})
	return raw, nil
}
