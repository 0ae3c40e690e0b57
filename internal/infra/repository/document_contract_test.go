package repository

import (
	"context"
	"testing"

	"github.com/rs-labo46/inventory-tracker/internal/domain/model"
	repo "github.com/rs-labo46/inventory-tracker/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 全バックエンドで同じ振る舞いになることを確認する
func runDocumentStoreContract(t *testing.T, store repo.DocumentStore, collection string) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing returns ErrNotFound", func(t *testing.T) {
		_, err := store.Get(ctx, collection, "nothing-here")
		assert.ErrorIs(t, err, repo.ErrNotFound)
	})

	t.Run("set creates then replaces", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, collection, model.Document{ID: "apple", Fields: model.DocumentFields{Quantity: 1}}))

		got, err := store.Get(ctx, collection, "apple")
		require.NoError(t, err)
		assert.Equal(t, model.Document{ID: "apple", Fields: model.DocumentFields{Quantity: 1}}, got)

		require.NoError(t, store.Set(ctx, collection, model.Document{ID: "apple", Fields: model.DocumentFields{Quantity: 5}}))
		got, err = store.Get(ctx, collection, "apple")
		require.NoError(t, err)
		assert.Equal(t, int64(5), got.Fields.Quantity)
	})

	t.Run("keys are case sensitive", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, collection, model.Document{ID: "Apple", Fields: model.DocumentFields{Quantity: 9}}))

		lower, err := store.Get(ctx, collection, "apple")
		require.NoError(t, err)
		upper, err := store.Get(ctx, collection, "Apple")
		require.NoError(t, err)
		assert.Equal(t, int64(5), lower.Fields.Quantity)
		assert.Equal(t, int64(9), upper.Fields.Quantity)
	})

	t.Run("list is ordered by id", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, collection, model.Document{ID: "banana", Fields: model.DocumentFields{Quantity: 2}}))

		docs, err := store.List(ctx, collection)
		require.NoError(t, err)
		ids := make([]string, 0, len(docs))
		for _, d := range docs {
			ids = append(ids, d.ID)
		}
		assert.Equal(t, []string{"Apple", "apple", "banana"}, ids)
	})

	t.Run("delete removes and is idempotent", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, collection, "banana"))
		require.NoError(t, store.Delete(ctx, collection, "banana"))

		_, err := store.Get(ctx, collection, "banana")
		assert.ErrorIs(t, err, repo.ErrNotFound)
	})

	t.Run("collections are isolated", func(t *testing.T) {
		docs, err := store.List(ctx, collection+"-other")
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}
