package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfortea/floorbot/internal/adapters/storage"
	"github.com/jfortea/floorbot/internal/domain"
)

func makePosition(id, identifier string, buyPrice float64, at time.Time) domain.VolumePosition {
	return domain.VolumePosition{
		ID:          id,
		Contract:    "0xABCDEF0123456789",
		Identifier:  identifier,
		BuyPrice:    buyPrice,
		PurchasedAt: at,
		Collection:  "the-warplets",
	}
}

func TestLedger_UpsertAndGet(t *testing.T) {
	db, err := storage.NewLedger(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, db.Upsert(ctx, makePosition("p1", "42", 0.98, at)))

	pos, err := db.Get(ctx, "0xABCDEF0123456789", "42")
	require.NoError(t, err)
	require.NotNil(t, pos)
	assert.Equal(t, "p1", pos.ID)
	assert.Equal(t, "42", pos.Identifier)
	assert.InDelta(t, 0.98, pos.BuyPrice, 1e-9)
	assert.True(t, pos.PurchasedAt.Equal(at))
	assert.Equal(t, "the-warplets", pos.Collection)
}

func TestLedger_GetMissingReturnsNil(t *testing.T) {
	db, err := storage.NewLedger(":memory:")
	require.NoError(t, err)
	defer db.Close()

	pos, err := db.Get(context.Background(), "0xABC", "1")
	require.NoError(t, err)
	assert.Nil(t, pos)
}

func TestLedger_GetIsCaseInsensitiveOnAddress(t *testing.T) {
	db, err := storage.NewLedger(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.Upsert(ctx, makePosition("p1", "42", 0.98, time.Now())))

	pos, err := db.Get(ctx, "0xabcdef0123456789", "42")
	require.NoError(t, err)
	assert.NotNil(t, pos)
}

func TestLedger_RebuyOverwritesPosition(t *testing.T) {
	db, err := storage.NewLedger(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.Upsert(ctx, makePosition("p1", "42", 0.98, time.Now())))
	require.NoError(t, db.Upsert(ctx, makePosition("p2", "42", 1.01, time.Now())))

	all, err := db.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1, "same token must not accumulate rows")
	assert.Equal(t, "p2", all[0].ID)
	assert.InDelta(t, 1.01, all[0].BuyPrice, 1e-9)
}

func TestLedger_AllNewestFirst(t *testing.T) {
	db, err := storage.NewLedger(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	base := time.Now().UTC()
	require.NoError(t, db.Upsert(ctx, makePosition("p1", "1", 0.9, base.Add(-2*time.Hour))))
	require.NoError(t, db.Upsert(ctx, makePosition("p2", "2", 0.95, base)))
	require.NoError(t, db.Upsert(ctx, makePosition("p3", "3", 0.92, base.Add(-time.Hour))))

	all, err := db.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2", all[0].Identifier)
	assert.Equal(t, "3", all[1].Identifier)
	assert.Equal(t, "1", all[2].Identifier)
}

func TestLedger_Remove(t *testing.T) {
	db, err := storage.NewLedger(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.Upsert(ctx, makePosition("p1", "42", 0.98, time.Now())))
	require.NoError(t, db.Remove(ctx, "0xABCDEF0123456789", "42"))

	pos, err := db.Get(ctx, "0xABCDEF0123456789", "42")
	require.NoError(t, err)
	assert.Nil(t, pos)

	// Removing again is a no-op.
	assert.NoError(t, db.Remove(ctx, "0xABCDEF0123456789", "42"))
}
