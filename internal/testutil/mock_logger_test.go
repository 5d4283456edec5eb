package testutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/coalition-intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/coalition-intelligence/internal/testutil"
)

func TestMockLogger(t *testing.T) {
	logger := testutil.NewMockLogger()

	logger.Info("test info", logging.String("key", "value"))

	messages := logger.GetMessages()
	assert.Len(t, messages, 1)
	assert.Equal(t, "info", messages[0].Level)
	assert.Equal(t, "test info", messages[0].Message)

	logger.Clear()
	assert.Len(t, logger.GetMessages(), 0)

	logger.Error("test error")
	assert.True(t, logger.HasMessage("error", "test error"))
	assert.False(t, logger.HasMessage("info", "test info"))
}

func TestMockLogger_ChildrenShareBuffer(t *testing.T) {
	logger := testutil.NewMockLogger()

	child := logger.Named("forecast").With(logging.Int("year", 2023))
	child.Warn("year missing from upper chamber", logging.String("party", "BBB"))

	msg, ok := logger.Find("warn", "upper chamber")
	require.True(t, ok)
	assert.Equal(t, "forecast", msg.Logger)
	year, ok := msg.Field("year")
	require.True(t, ok)
	assert.Equal(t, 2023, year)
	party, _ := msg.Field("party")
	assert.Equal(t, "BBB", party)
}

func TestNopLogger(t *testing.T) {
	logger := testutil.NewNopLogger()

	// Ensure it implements the interface and doesn't panic
	var _ logging.Logger = logger
	logger.Info("test info")
	logger.Named("x").With(logging.Bool("b", true)).Error("test error")

	assert.NotNil(t, logger)
}

//Personal.AI order the ending
