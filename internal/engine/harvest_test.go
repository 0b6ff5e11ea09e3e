package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfortea/floorbot/internal/domain"
)

func TestHarvest_ListsAtUndercutTarget(t *testing.T) {
	m := reconcileMarket(ownedNFT("1"))
	e, _ := newTestEngine(m, &mockWallet{address: "0xME"}, newMockLedger(), &mockControl{})

	require.NoError(t, e.harvest(context.Background(), 1.0))

	require.Len(t, m.createdListings, 1)
	assert.InDelta(t, 0.999, m.createdListings[0].Price, 1e-9)
	assert.True(t, m.createdListings[0].Expiry.IsZero(), "harvest listings carry no expiry")
}

func TestHarvest_TargetNeverBelowMinimum(t *testing.T) {
	m := reconcileMarket(ownedNFT("1"))
	e, _ := newTestEngine(m, &mockWallet{address: "0xME"}, newMockLedger(), &mockControl{})

	require.NoError(t, e.harvest(context.Background(), 0.0005))
	require.Len(t, m.createdListings, 1)
	assert.Equal(t, 0.001, m.createdListings[0].Price)
}

func TestHarvest_SkipsWhenFloorIsOurs(t *testing.T) {
	m := reconcileMarket(ownedNFT("1"))
	m.collectionListings = []domain.Listing{
		{Contract: "0xCCC", Identifier: "9", Price: 0.999, Maker: "0xME"},
	}
	e, _ := newTestEngine(m, &mockWallet{address: "0xME"}, newMockLedger(), &mockControl{})

	require.NoError(t, e.harvest(context.Background(), 1.0))
	assert.Empty(t, m.createdListings)
}

func TestHarvest_SkipsVolumeInventory(t *testing.T) {
	m := reconcileMarket(ownedNFT("1"))
	l := newMockLedger()
	require.NoError(t, l.Upsert(context.Background(), domain.VolumePosition{
		ID: "p1", Contract: "0xCCC", Identifier: "1", BuyPrice: 0.98, Collection: testCollection,
	}))
	e, _ := newTestEngine(m, &mockWallet{address: "0xME"}, l, &mockControl{})

	require.NoError(t, e.harvest(context.Background(), 1.0))
	assert.Empty(t, m.createdListings)
}

func TestHarvest_SkipsListingAlreadyAtTarget(t *testing.T) {
	m := reconcileMarket(ownedNFT("1"))
	m.nftListings[ownedNFT("1").Key()] = []domain.Listing{
		{Contract: "0xCCC", Identifier: "1", Price: 0.99905, Maker: "0xME"},
	}
	e, _ := newTestEngine(m, &mockWallet{address: "0xME"}, newMockLedger(), &mockControl{})

	require.NoError(t, e.harvest(context.Background(), 1.0))
	assert.Empty(t, m.createdListings, "within epsilon of target counts as at target")
}

func TestHarvest_UpdatesStaleOwnListing(t *testing.T) {
	m := reconcileMarket(ownedNFT("1"))
	m.nftListings[ownedNFT("1").Key()] = []domain.Listing{
		{Contract: "0xCCC", Identifier: "1", Price: 1.05, Maker: "0xME"},
	}
	e, _ := newTestEngine(m, &mockWallet{address: "0xME"}, newMockLedger(), &mockControl{})

	require.NoError(t, e.harvest(context.Background(), 1.0))
	require.Len(t, m.createdListings, 1)
	assert.InDelta(t, 0.999, m.createdListings[0].Price, 1e-9)
}

func TestHarvest_OneUpdatePerCycle(t *testing.T) {
	m := reconcileMarket(ownedNFT("1"), ownedNFT("2"), ownedNFT("3"))
	e, _ := newTestEngine(m, &mockWallet{address: "0xME"}, newMockLedger(), &mockControl{})

	require.NoError(t, e.harvest(context.Background(), 1.0))
	assert.Len(t, m.createdListings, 1)
}
