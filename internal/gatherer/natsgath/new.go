package natsgath

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/programme-lv/grader/internal/grading"
)

// Publisher is the part of *nats.Conn the gatherer needs.
type Publisher interface {
	Publish(subj string, data []byte) error
}

// Connect dials the NATS server at url.
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url, nats.Name("grader"), nats.MaxReconnects(5))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	return nc, nil
}

// New creates a new NATS gatherer that streams grading events of one
// submission to the given subject.
func New(pub Publisher, subject string, submUuid string, logger *slog.Logger) *natsGatherer {
	if logger == nil {
		logger = slog.Default()
	}
	return &natsGatherer{
		pub:      pub,
		subject:  subject,
		submUuid: submUuid,
		logger:   logger,
	}
}

// Factory returns a gatherer factory giving every submission its own v7 uuid.
func Factory(pub Publisher, subject string, logger *slog.Logger) grading.GathererFactory {
	return func(sub grading.Submission) grading.Gatherer {
		return New(pub, subject, uuid.Must(uuid.NewV7()).String(), logger)
	}
}
