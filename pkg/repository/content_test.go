package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tributary/pkg/domain/interfaces"
	"github.com/secmon-lab/tributary/pkg/repository/memory"
)

func runContentRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.ContentRepository) {
	t.Helper()

	t.Run("Create and Get", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Create(ctx, "pages", map[string]any{
			"title": "Hello",
			"tags":  []any{"news", "tech"},
			"score": float64(4),
		})
		gt.NoError(t, err).Required()
		gt.String(t, created.ID).NotEqual("")
		gt.Value(t, created.Collection).Equal("pages")

		got, err := repo.Get(ctx, "pages", created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Fields["title"]).Equal("Hello")
		gt.Value(t, got.Fields["tags"]).Equal([]any{"news", "tech"})
		gt.Value(t, got.Fields["score"]).Equal(float64(4))
	})

	t.Run("Collections are separated", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Create(ctx, "pages", map[string]any{"title": "Hello"})
		gt.NoError(t, err).Required()

		_, err = repo.Get(ctx, "articles", created.ID)
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("Merge overwrites given fields only", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Create(ctx, "articles", map[string]any{"title": "Old", "body": "keep"})
		gt.NoError(t, err).Required()

		merged, err := repo.Merge(ctx, "articles", created.ID, map[string]any{"title": "Hello"})
		gt.NoError(t, err).Required()
		gt.Value(t, merged.Fields["title"]).Equal("Hello")
		gt.Value(t, merged.Fields["body"]).Equal("keep")

		got, err := repo.Get(ctx, "articles", created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Fields["title"]).Equal("Hello")
		gt.Value(t, got.Fields["body"]).Equal("keep")
	})

	t.Run("Merge returns not found", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Merge(context.Background(), "pages", "missing", map[string]any{"title": "x"})
		gt.Bool(t, isNotFound(err)).True()
	})
}

func TestMemoryContentRepository(t *testing.T) {
	runContentRepositoryTest(t, func(t *testing.T) interfaces.ContentRepository {
		return memory.New().Content()
	})
}

func TestFirestoreContentRepository(t *testing.T) {
	runContentRepositoryTest(t, func(t *testing.T) interfaces.ContentRepository {
		return newFirestoreRepository(t).Content()
	})
}

func TestMongoDBContentRepository(t *testing.T) {
	runContentRepositoryTest(t, newMongoContentRepository)
}
