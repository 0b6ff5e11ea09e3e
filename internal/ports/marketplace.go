package ports

import (
	"context"
	"time"

	"github.com/jfortea/floorbot/internal/domain"
)

// Marketplace is the NFT marketplace API boundary. Implementations normalize
// the wire payloads (field-name fallbacks, price value/decimals pairs) into
// the strict domain shapes; nothing downstream branches on payload shape.
type Marketplace interface {
	// CollectionFloor returns the lowest listed price for the collection.
	CollectionFloor(ctx context.Context, slug string) (float64, error)

	// CollectionOffers returns collection-wide bids, best first, with
	// per-item prices (batch offers are divided by remaining quantity).
	CollectionOffers(ctx context.Context, slug string, limit int) ([]domain.Offer, error)

	// NFTsByAccount returns tokens held by the address across collections.
	NFTsByAccount(ctx context.Context, address string, limit int) ([]domain.NFT, error)

	// NFTsByCollection returns tokens in the collection.
	NFTsByCollection(ctx context.Context, slug string, limit int) ([]domain.NFT, error)

	// NFTListings returns open listings for one token, best first.
	NFTListings(ctx context.Context, contract, identifier string, limit int) ([]domain.Listing, error)

	// CollectionListings returns open listings across the collection. The
	// result may include cross-listed or stale entries; callers filter by
	// contract address before acting on it.
	CollectionListings(ctx context.Context, slug string, limit int) ([]domain.Listing, error)

	// CreateCollectionOffer places a collection-wide bid and returns its
	// order hash.
	CreateCollectionOffer(ctx context.Context, slug string, amount float64, expiry time.Time) (string, error)

	// CreateListing lists one owned token. A zero expiry means the
	// marketplace default.
	CreateListing(ctx context.Context, contract, identifier string, amount float64, expiry time.Time) (string, error)

	// CancelOrder cancels an order by hash.
	CancelOrder(ctx context.Context, orderHash string) error

	// FulfillListing buys the given listing at its asking price.
	FulfillListing(ctx context.Context, listing domain.Listing) error
}
