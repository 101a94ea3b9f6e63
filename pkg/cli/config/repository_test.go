package config_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tributary/pkg/cli/config"
	"github.com/secmon-lab/tributary/pkg/repository/memory"
)

func TestRepository_Configure(t *testing.T) {
	t.Run("memory backend", func(t *testing.T) {
		repo, err := config.NewRepositoryForTest(config.BackendMemory, "", 10).Configure(t.Context())
		gt.NoError(t, err).Required()
		defer func() { gt.NoError(t, repo.Close()) }()

		_, ok := repo.(*memory.Memory)
		gt.Bool(t, ok).True()
	})

	t.Run("firestore requires project ID", func(t *testing.T) {
		_, err := config.NewRepositoryForTest(config.BackendFirestore, "", 10).Configure(t.Context())
		gt.Bool(t, errors.Is(err, config.ErrMissingFlag)).True()
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("sqlite", "", 10).Configure(t.Context())
		gt.Bool(t, errors.Is(err, config.ErrInvalidFlag)).True()
	})

	t.Run("history capacity must be positive", func(t *testing.T) {
		_, err := config.NewRepositoryForTest(config.BackendMemory, "", 0).Configure(t.Context())
		gt.Bool(t, errors.Is(err, config.ErrInvalidFlag)).True()
	})
}

func TestRepository_ConfigureContent(t *testing.T) {
	t.Run("empty backend keeps content in the repository", func(t *testing.T) {
		content, closer, err := config.NewContentRepositoryForTest("", "").ConfigureContent(t.Context())
		gt.NoError(t, err)
		gt.Value(t, content).Nil()
		closer()
	})

	t.Run("mongodb requires URI", func(t *testing.T) {
		_, closer, err := config.NewContentRepositoryForTest(config.BackendMongoDB, "").ConfigureContent(t.Context())
		gt.Bool(t, errors.Is(err, config.ErrMissingFlag)).True()
		closer()
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, _, err := config.NewContentRepositoryForTest("redis", "").ConfigureContent(t.Context())
		gt.Bool(t, errors.Is(err, config.ErrInvalidFlag)).True()
	})
}
