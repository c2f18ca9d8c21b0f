package logging_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/cellmap/pkg/logging"
)

func TestContextLogger(t *testing.T) {
	testLogger := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithSource(ctx, "passports")
	ctx = logging.WithOperation(ctx, "load")

	logger := logging.FromContext(ctx)
	logger.Info().Msg("test message")

	assert.True(t, testLogger.ContainsAll("passports", "load", "test message"))
}

func TestFromContextFallback(t *testing.T) {
	// A context without a logger falls back to the default
	logger := logging.FromContext(context.Background())
	assert.NotNil(t, logger)
}

func TestWithAccession(t *testing.T) {
	testLogger := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithAccession(ctx, "CVCL_0030")

	logging.Ctx(ctx).Info().Msg("resolved")

	assert.True(t, testLogger.Contains("CVCL_0030"))
}

func TestWithFields(t *testing.T) {
	testLogger := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithFields(ctx, map[string]any{
		"records": 42,
		"skipped": true,
	})

	logging.FromContext(ctx).Info().Msg("summary")

	assert.True(t, testLogger.ContainsAll(`"records":42`, `"skipped":true`))
}
