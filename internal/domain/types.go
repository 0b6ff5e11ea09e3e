package domain

import "time"

// NFT is a single token in a collection, normalized from the marketplace API.
type NFT struct {
	Contract   string
	Identifier string
	Collection string // collection slug
}

// Key returns the canonical (contract, identifier) key used by cooldown
// caches and the trade ledger. Contract addresses are case-normalized.
func (n NFT) Key() string {
	return TokenKey(n.Contract, n.Identifier)
}

// Offer is a collection-wide bid, price already normalized to a per-item
// amount in ether units.
type Offer struct {
	OrderHash string
	Price     float64
	Offerer   string
	Quantity  int // remaining quantity; 1 for single-item offers
}

// Listing is an open sell order for one token.
type Listing struct {
	OrderHash  string
	Contract   string
	Identifier string
	Price      float64 // ether units
	Maker      string
	Expiration time.Time
}

// MarketObservation is the per-cycle snapshot the strategy prices against.
// Refreshed every poll, never persisted.
type MarketObservation struct {
	Floor           float64
	BestOffer       float64
	BestOfferOurs   bool
	SecondBestOffer float64
}

// VolumePosition is a durable record of a token bought by the volume-trading
// cycle. One row per token; buying the same token again updates the row.
type VolumePosition struct {
	ID          string
	Contract    string
	Identifier  string
	BuyPrice    float64
	PurchasedAt time.Time
	Collection  string
}

// Toggles is the operator-controlled feature state. Read at fixed
// checkpoints in the engine cycle, mutated only by the control plane.
type Toggles struct {
	Bidding bool
	Harvest bool
	Sniper  bool
	Volume  bool
}

// Stats is the per-cycle snapshot broadcast to the dashboard.
type Stats struct {
	Floor          float64
	BestOffer      float64
	YourOffer      float64 // 0 when no offer is live or planned
	OurBest        bool
	WrappedBalance float64
	NativeSymbol   string
	WrappedSymbol  string
}

// CycleReport summarizes what one engine cycle did, for the console notifier.
type CycleReport struct {
	CycleID      string
	At           time.Time
	Observation  MarketObservation
	OfferPlaced  bool
	OfferPrice   float64
	Listed       int
	Sniped       bool
	VolumeBought bool
	Positions    []VolumePosition
}
