package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tributary/pkg/cli/config"
)

func TestSlack_Configure(t *testing.T) {
	t.Run("not configured without token", func(t *testing.T) {
		cfg := config.NewSlackForTest("", "C123")
		gt.Bool(t, cfg.IsConfigured()).False()

		notifier, err := cfg.Configure()
		gt.NoError(t, err)
		gt.Value(t, notifier).Nil()
	})

	t.Run("channel is required with token", func(t *testing.T) {
		_, err := config.NewSlackForTest("xoxb-test", "").Configure()
		gt.Bool(t, errors.Is(err, config.ErrMissingFlag)).True()
	})

	t.Run("creates notifier", func(t *testing.T) {
		notifier, err := config.NewSlackForTest("xoxb-test", "C123").Configure()
		gt.NoError(t, err)
		gt.Value(t, notifier).NotNil()
	})
}

func TestNotion_Configure(t *testing.T) {
	svc, err := config.NewNotionForTest("").Configure()
	gt.NoError(t, err)
	gt.Value(t, svc).Nil()

	svc, err = config.NewNotionForTest("secret_test").Configure()
	gt.NoError(t, err)
	gt.Value(t, svc).NotNil()
}

func TestFetcher_Configure(t *testing.T) {
	svc, err := config.NewFetcherForTest(5*time.Second, 1024).Configure()
	gt.NoError(t, err)
	gt.Value(t, svc).NotNil()

	_, err = config.NewFetcherForTest(0, 1024).Configure()
	gt.Bool(t, errors.Is(err, config.ErrInvalidFlag)).True()

	_, err = config.NewFetcherForTest(time.Second, 0).Configure()
	gt.Bool(t, errors.Is(err, config.ErrInvalidFlag)).True()
}

func TestArchive_Configure(t *testing.T) {
	archiver, err := config.NewArchiveForTest("").Configure(t.Context())
	gt.NoError(t, err)
	gt.Value(t, archiver).Nil()
}

func TestSentry_Configure(t *testing.T) {
	flush, err := config.NewSentryForTest("").Configure("test")
	gt.NoError(t, err)
	flush()
}
