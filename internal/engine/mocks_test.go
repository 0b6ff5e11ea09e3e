package engine

import (
	"context"
	"time"

	"github.com/jfortea/floorbot/internal/domain"
)

// --- marketplace mock ---

type createdListing struct {
	Contract   string
	Identifier string
	Price      float64
	Expiry     time.Time
}

type mockMarket struct {
	floor     float64
	floorErr  error
	offers    []domain.Offer
	offersErr error

	accountNFTs    []domain.NFT
	collectionNFTs []domain.NFT

	nftListings    map[string][]domain.Listing // domain.TokenKey → listings
	nftListingsErr error

	collectionListings    []domain.Listing
	collectionListingsErr error

	createdOffers   []float64
	createOfferErr  error
	createdListings []createdListing
	// createListingFailures fails the first N CreateListing calls.
	createListingFailures int
	createListingErr      error

	canceled  []string
	cancelErr error

	fulfilled  []domain.Listing
	fulfillErr error
}

func (m *mockMarket) CollectionFloor(_ context.Context, _ string) (float64, error) {
	return m.floor, m.floorErr
}

func (m *mockMarket) CollectionOffers(_ context.Context, _ string, _ int) ([]domain.Offer, error) {
	return m.offers, m.offersErr
}

func (m *mockMarket) NFTsByAccount(_ context.Context, _ string, _ int) ([]domain.NFT, error) {
	return m.accountNFTs, nil
}

func (m *mockMarket) NFTsByCollection(_ context.Context, _ string, _ int) ([]domain.NFT, error) {
	return m.collectionNFTs, nil
}

func (m *mockMarket) NFTListings(_ context.Context, contract, identifier string, _ int) ([]domain.Listing, error) {
	if m.nftListingsErr != nil {
		return nil, m.nftListingsErr
	}
	return m.nftListings[domain.TokenKey(contract, identifier)], nil
}

func (m *mockMarket) CollectionListings(_ context.Context, _ string, _ int) ([]domain.Listing, error) {
	return m.collectionListings, m.collectionListingsErr
}

func (m *mockMarket) CreateCollectionOffer(_ context.Context, _ string, amount float64, _ time.Time) (string, error) {
	if m.createOfferErr != nil {
		return "", m.createOfferErr
	}
	m.createdOffers = append(m.createdOffers, amount)
	return "0xoffer", nil
}

func (m *mockMarket) CreateListing(_ context.Context, contract, identifier string, amount float64, expiry time.Time) (string, error) {
	if m.createListingFailures > 0 {
		m.createListingFailures--
		return "", m.createListingErr
	}
	if m.createListingErr != nil {
		return "", m.createListingErr
	}
	m.createdListings = append(m.createdListings, createdListing{
		Contract:   contract,
		Identifier: identifier,
		Price:      amount,
		Expiry:     expiry,
	})
	return "0xlisting", nil
}

func (m *mockMarket) CancelOrder(_ context.Context, orderHash string) error {
	if m.cancelErr != nil {
		return m.cancelErr
	}
	m.canceled = append(m.canceled, orderHash)
	return nil
}

func (m *mockMarket) FulfillListing(_ context.Context, listing domain.Listing) error {
	if m.fulfillErr != nil {
		return m.fulfillErr
	}
	m.fulfilled = append(m.fulfilled, listing)
	return nil
}

// --- wallet mock ---

type mockWallet struct {
	address string
	native  float64
	wrapped float64

	wrapCalls   []float64
	unwrapCalls []float64
	wrapErr     error
	unwrapErr   error
}

func (w *mockWallet) Address() string { return w.address }

func (w *mockWallet) NativeBalance(_ context.Context) (float64, error) { return w.native, nil }

func (w *mockWallet) WrappedBalance(_ context.Context) (float64, error) { return w.wrapped, nil }

func (w *mockWallet) Wrap(_ context.Context, amount float64) error {
	if w.wrapErr != nil {
		return w.wrapErr
	}
	w.wrapCalls = append(w.wrapCalls, amount)
	return nil
}

func (w *mockWallet) Unwrap(_ context.Context, amount float64) error {
	if w.unwrapErr != nil {
		return w.unwrapErr
	}
	w.unwrapCalls = append(w.unwrapCalls, amount)
	return nil
}

// --- ledger mock ---

type mockLedger struct {
	positions map[string]domain.VolumePosition
	upserts   int
	removed   []string
}

func newMockLedger() *mockLedger {
	return &mockLedger{positions: make(map[string]domain.VolumePosition)}
}

func (l *mockLedger) Upsert(_ context.Context, pos domain.VolumePosition) error {
	l.positions[domain.TokenKey(pos.Contract, pos.Identifier)] = pos
	l.upserts++
	return nil
}

func (l *mockLedger) Get(_ context.Context, contract, identifier string) (*domain.VolumePosition, error) {
	pos, ok := l.positions[domain.TokenKey(contract, identifier)]
	if !ok {
		return nil, nil
	}
	return &pos, nil
}

func (l *mockLedger) All(_ context.Context) ([]domain.VolumePosition, error) {
	out := make([]domain.VolumePosition, 0, len(l.positions))
	for _, p := range l.positions {
		out = append(out, p)
	}
	return out, nil
}

func (l *mockLedger) Remove(_ context.Context, contract, identifier string) error {
	key := domain.TokenKey(contract, identifier)
	delete(l.positions, key)
	l.removed = append(l.removed, key)
	return nil
}

func (l *mockLedger) Close() error { return nil }

// --- control plane + broadcaster mocks ---

type mockControl struct {
	toggles domain.Toggles
	stop    bool
	cancel  bool
}

func (c *mockControl) Toggles() domain.Toggles { return c.toggles }

func (c *mockControl) StopRequested() bool { return c.stop }

func (c *mockControl) TakeCancelRequest() bool {
	if c.cancel {
		c.cancel = false
		return true
	}
	return false
}

type mockCast struct {
	stats []domain.Stats
	logs  []string
}

func (b *mockCast) Stats(s domain.Stats)        { b.stats = append(b.stats, s) }
func (b *mockCast) Log(level, message string)   { b.logs = append(b.logs, level+": "+message) }

// --- helpers ---

const testCollection = "the-warplets"

func newTestEngine(m *mockMarket, w *mockWallet, l *mockLedger, c *mockControl) (*Engine, *mockCast) {
	cfg := DefaultConfig()
	cfg.Collection = testCollection
	cfg.ListingRetryWait = time.Millisecond
	cast := &mockCast{}
	e := New(cfg, m, w, l, c, cast, nil)
	return e, cast
}

func ownedNFT(id string) domain.NFT {
	return domain.NFT{Contract: "0xCCC", Identifier: id, Collection: testCollection}
}
