package sqsgath

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
	"github.com/programme-lv/grader/api"
	"github.com/programme-lv/grader/internal/gatherer/respbuilder"
	"github.com/programme-lv/grader/internal/grading"
)

// Sender is the part of *sqs.Client the gatherer needs.
type Sender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// NewClient loads the default AWS config, optionally pinned to a region and
// shared profile, and returns an SQS client.
func NewClient(ctx context.Context, region string, profile string) (*sqs.Client, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return sqs.NewFromConfig(cfg), nil
}

// Factory returns a gatherer factory whose gatherers send the finished
// api.Record of every submission to queueUrl.
func Factory(ctx context.Context, client Sender, queueUrl string, logger *slog.Logger) grading.GathererFactory {
	if logger == nil {
		logger = slog.Default()
	}
	s := &sqsResQueueSender{ctx: ctx, client: client, queueUrl: queueUrl, logger: logger}
	return func(sub grading.Submission) grading.Gatherer {
		return respbuilder.New(uuid.Must(uuid.NewV7()).String(), func(rec api.Record) {
			s.send(rec)
		})
	}
}
