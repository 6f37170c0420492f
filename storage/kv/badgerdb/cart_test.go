package badgerdb

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/belleza/salon/core"
	"github.com/belleza/salon/core/cart"
)

func openTestDB(t *testing.T) *cartRepository {
	conf := &core.Config{}
	conf.Cart.InMemory = true
	db, err := Open(conf, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewCartRepository(db, time.Hour)
}

func TestCartRepository(t *testing.T) {
	ctx := context.Background()
	repo := openTestDB(t)

	s, err := repo.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, s.ItemCount())

	s.AddItem(cart.Item{ID: "p1", Name: "Serum", Price: decimal.NewFromInt(168)})
	s.AddItem(cart.Item{ID: "p2", Name: "Comb", Price: decimal.NewFromInt(45)})
	s.SetQuantity("p2", 3)
	require.NoError(t, repo.Save(ctx, "alice", s))

	got, err := repo.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, s.Items(), got.Items())
	assert.Equal(t, "303", got.TotalPrice().String())

	require.NoError(t, repo.Delete(ctx, "alice"))
	got, err = repo.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, got.ItemCount())
}

func TestCartRepository_ServiceRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := openTestDB(t)
	svc := cart.NewService(repo, nil)

	require.NoError(t, repo.Save(ctx, "bob", cart.NewStore()))
	_, err := svc.RemoveItem(ctx, "bob", "absent")
	require.NoError(t, err)

	sum, err := svc.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Zero(t, sum.ItemCount)
}

func TestCartRepository_CancelledContext(t *testing.T) {
	repo := openTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Load(ctx, "alice")
	assert.ErrorIs(t, err, context.Canceled)
}
