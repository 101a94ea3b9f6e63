package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tributary/pkg/utils/logging"
)

func TestFromFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	gt.Value(t, logging.From(ctx)).Equal(logging.Default())

	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelInfo, logging.FormatJSON)
	ctx = logging.With(ctx, logger)
	gt.Value(t, logging.From(ctx)).Equal(logger)
}

func TestJSONLoggerRedactsSecrets(t *testing.T) {
	type credential struct {
		Name  string
		Token string
	}

	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelInfo, logging.FormatJSON)
	logger.Info("configured", "cred", credential{Name: "notion", Token: "secret_abcdef"})

	out := buf.String()
	gt.Bool(t, strings.Contains(out, "notion")).True()
	gt.Bool(t, strings.Contains(out, "secret_abcdef")).False()
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelWarn, logging.FormatJSON)
	logger.Info("hidden")
	logger.Warn("shown")

	gt.Bool(t, strings.Contains(buf.String(), "hidden")).False()
	gt.Bool(t, strings.Contains(buf.String(), "shown")).True()
}
