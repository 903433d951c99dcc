//go:build integration

package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/DRSN-tech/onlinestore/internal/cfg"
	"github.com/DRSN-tech/onlinestore/internal/domain"
	"github.com/DRSN-tech/onlinestore/internal/testutil"
	"github.com/DRSN-tech/onlinestore/pkg/clients"
	"github.com/DRSN-tech/onlinestore/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntegrationRepo(t *testing.T) *CartRepo {
	t.Helper()

	ctx := context.Background()
	client, err := clients.NewMongoClient(ctx, &cfg.MongoCfg{
		URI:      testutil.StartMongo(t),
		Database: "store_test",
		Timeout:  10 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close(context.Background()) })

	repo := NewCartRepo(client.DB)
	require.NoError(t, repo.EnsureIndexes(ctx))
	return repo
}

func TestCartRepo_Integration(t *testing.T) {
	repo := newIntegrationRepo(t)
	ctx := context.Background()
	product := &domain.Product{ID: 1, Price: 1000, Stock: 10}

	cart := domain.NewCart("u1")
	require.NoError(t, cart.AddItem(product, 2))
	require.NoError(t, repo.Create(ctx, cart))
	require.NotEmpty(t, cart.ID)

	t.Run("second active cart is rejected", func(t *testing.T) {
		err := repo.Create(ctx, domain.NewCart("u1"))
		assert.ErrorIs(t, err, e.ErrCartAlreadyExists)
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		first, err := repo.GetActiveByUser(ctx, "u1")
		require.NoError(t, err)
		second, err := repo.GetActiveByUser(ctx, "u1")
		require.NoError(t, err)

		require.NoError(t, first.AddItem(product, 1))
		require.NoError(t, repo.Save(ctx, first))

		require.NoError(t, second.AddItem(product, 1))
		assert.ErrorIs(t, repo.Save(ctx, second), e.ErrCartConflict)

		stored, err := repo.GetByID(ctx, cart.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, stored.Items[0].Quantity)
		assert.Equal(t, int64(1), stored.Version)
	})

	t.Run("deactivated cart stays readable by id", func(t *testing.T) {
		active, err := repo.GetActiveByUser(ctx, "u1")
		require.NoError(t, err)

		active.Deactivate()
		require.NoError(t, repo.Save(ctx, active))

		_, err = repo.GetActiveByUser(ctx, "u1")
		assert.ErrorIs(t, err, e.ErrCartNotFound)

		old, err := repo.GetByID(ctx, cart.ID)
		require.NoError(t, err)
		assert.False(t, old.IsActive)

		require.NoError(t, repo.Create(ctx, domain.NewCart("u1")), "a new active cart can be created")
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "not-an-object-id")
		assert.ErrorIs(t, err, e.ErrCartNotFound)
	})
}
