package sqsgath

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/programme-lv/grader/api"
)

type sqsResQueueSender struct {
	ctx      context.Context
	client   Sender
	queueUrl string
	logger   *slog.Logger
}

func (s *sqsResQueueSender) send(rec api.Record) {
	b, err := json.Marshal(rec)
	if err != nil {
		s.logger.Error("failed to marshal record", "student", rec.StudentID, "error", err)
		return
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueUrl),
		MessageBody: aws.String(string(b)),
	}
	// SQS rejects empty attribute values
	if rec.StudentID != "" {
		input.MessageAttributes = map[string]types.MessageAttributeValue{
			"student_id": {DataType: aws.String("String"), StringValue: aws.String(rec.StudentID)},
		}
	}
	_, err = s.client.SendMessage(s.ctx, input)
	if err != nil {
		s.logger.Warn("failed to send record", "student", rec.StudentID, "queue", s.queueUrl, "error", err)
	}
}
