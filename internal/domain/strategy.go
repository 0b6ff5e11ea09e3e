package domain

// strategy.go — pure pricing functions. No I/O, no clocks: identical inputs
// must produce identical outputs so the engine's decisions stay replayable.

import (
	"math"
	"strings"
	"time"
)

// StrategyPolicy is the immutable pricing configuration. Loaded once at
// startup; runtime behavior changes go through Toggles, never through this.
type StrategyPolicy struct {
	MaxOfferFractionOfFloor float64       // hard bid ceiling, e.g. 0.985
	BidIncrement            float64       // ether added on top of the offer we outbid
	UndercutAmount          float64       // ether below floor for regular listings
	OfferDuration           time.Duration // collection offers self-expire after this
	SniperThreshold         float64       // buy listings below floor×threshold
	HarvestUndercut         float64       // ether below floor for the harvest listing
	UseSecondBest           bool          // outbid the 2nd-best offer instead of the best
}

// PriceOffer computes the next collection bid. Returns false when no bid is
// allowed: the target would exceed floor×MaxOfferFractionOfFloor, a ceiling
// that holds in every strategy mode. The result is rounded to 4 decimals,
// the marketplace's minimum price granularity.
func PriceOffer(bestOffer, secondBestOffer, floor float64, p StrategyPolicy) (float64, bool) {
	target := bestOffer + p.BidIncrement
	if p.UseSecondBest && secondBestOffer > 0 {
		target = secondBestOffer + p.BidIncrement
	}

	if target > floor*p.MaxOfferFractionOfFloor {
		return 0, false
	}
	return Round4(target), true
}

// PriceListing computes the regular (non-volume) listing price. Listing
// below floor is intentional, so there is no ceiling check and no rounding.
func PriceListing(floor float64, p StrategyPolicy) float64 {
	return floor - p.UndercutAmount
}

// Round4 rounds to 4 decimal places (offer granularity).
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// Round6 rounds to 6 decimal places (listing granularity).
func Round6(v float64) float64 {
	return math.Round(v*1000000) / 1000000
}

// TokenKey builds the canonical lookup key for a token. The marketplace
// mixes address casings across endpoints, so the contract is lowercased.
func TokenKey(contract, identifier string) string {
	return strings.ToLower(contract) + "-" + identifier
}

// SameAddress compares two hex addresses ignoring case.
func SameAddress(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}
