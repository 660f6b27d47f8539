package environment

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

const (
	DefaultNatsSubject = "grader.events"
	DefaultAWSRegion   = "eu-central-1"
)

// EnvConfig holds settings read from the process environment and an optional .env file.
type EnvConfig struct {
	NatsURL       string
	NatsSubject   string
	ResultsSqsURL string
	ScratchDir    string
	AWSRegion     string
	AWSProfile    string
}

// ReadEnvConfig loads the given .env files (".env" when none are given) and
// reads the grader's variables. Missing files are not an error; variables
// already set in the environment win over file values.
func ReadEnvConfig(logger *slog.Logger, files ...string) *EnvConfig {
	if logger == nil {
		logger = slog.Default()
	}
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("failed to load env file", "file", f, "error", err)
		}
	}

	return &EnvConfig{
		NatsURL:       os.Getenv("GRADER_NATS_URL"),
		NatsSubject:   getenvDefault("GRADER_NATS_SUBJECT", DefaultNatsSubject),
		ResultsSqsURL: os.Getenv("GRADER_RESULTS_SQS_URL"),
		ScratchDir:    os.Getenv("GRADER_SCRATCH_DIR"),
		AWSRegion:     getenvDefault("AWS_REGION", DefaultAWSRegion),
		AWSProfile:    os.Getenv("AWS_PROFILE"),
	}
}

func getenvDefault(key string, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
