package environment_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/programme-lv/grader/internal/environment"
	"github.com/stretchr/testify/assert"
)

func TestReadEnvConfig(t *testing.T) {
	for _, k := range []string{"GRADER_NATS_URL", "GRADER_NATS_SUBJECT", "GRADER_RESULTS_SQS_URL",
		"GRADER_SCRATCH_DIR", "AWS_REGION", "AWS_PROFILE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Setenv("GRADER_SCRATCH_DIR", "/from/env")

	envFile := filepath.Join(t.TempDir(), "test.env")
	assert.NoError(t, os.WriteFile(envFile, []byte(
		"GRADER_NATS_URL=nats://localhost:4222\nGRADER_SCRATCH_DIR=/from/file\n"), 0644))

	cfg := environment.ReadEnvConfig(nil, envFile)
	assert.Equal(t, "nats://localhost:4222", cfg.NatsURL)
	assert.Equal(t, "/from/env", cfg.ScratchDir)
	assert.Equal(t, environment.DefaultNatsSubject, cfg.NatsSubject)
	assert.Equal(t, environment.DefaultAWSRegion, cfg.AWSRegion)
	assert.Empty(t, cfg.ResultsSqsURL)
}

func TestMissingEnvFile(t *testing.T) {
	t.Setenv("GRADER_NATS_SUBJECT", "custom.subject")
	cfg := environment.ReadEnvConfig(nil, filepath.Join(t.TempDir(), "absent.env"))
	assert.Equal(t, "custom.subject", cfg.NatsSubject)
}
