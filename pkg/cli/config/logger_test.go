package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tributary/pkg/cli/config"
	"github.com/secmon-lab/tributary/pkg/utils/logging"
)

func TestLogger_Configure(t *testing.T) {
	original := logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	t.Run("writes JSON logs to a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tributary.log")
		closer, err := config.NewLoggerForTest("debug", "json", path).Configure()
		gt.NoError(t, err).Required()

		logging.Default().Debug("seeded sync config", "name", "news")
		closer()

		data, err := os.ReadFile(path)
		gt.NoError(t, err).Required()
		gt.Bool(t, strings.Contains(string(data), `"msg":"seeded sync config"`)).True()
		gt.Bool(t, strings.Contains(string(data), `"name":"news"`)).True()
	})

	t.Run("level filters lower records", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tributary.log")
		closer, err := config.NewLoggerForTest("warn", "json", path).Configure()
		gt.NoError(t, err).Required()

		logging.Default().Info("hidden")
		closer()

		data, err := os.ReadFile(path)
		gt.NoError(t, err).Required()
		gt.Bool(t, strings.Contains(string(data), "hidden")).False()
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		_, err := config.NewLoggerForTest("verbose", "console", "stdout").Configure()
		gt.Bool(t, errors.Is(err, config.ErrInvalidFlag)).True()
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		_, err := config.NewLoggerForTest("info", "xml", "stdout").Configure()
		gt.Bool(t, errors.Is(err, config.ErrInvalidFlag)).True()
	})
}
