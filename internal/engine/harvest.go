package engine

// harvest.go — keeps one of our listings at the floor. Updates at most one
// listing per cycle to stay inside marketplace rate limits; volume inventory
// is excluded, its pricing belongs to the flip cycle.

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// harvestFloorPrice is the lowest price the harvest flow will ever list at,
// regardless of how deep the undercut would go.
const harvestFloorPrice = 0.001

// harvestPriceEpsilon treats an existing listing within this distance of the
// target as already at target.
const harvestPriceEpsilon = 0.0001

func (e *Engine) harvest(ctx context.Context, floor float64) error {
	owned, err := e.ownedInCollection(ctx)
	if err != nil {
		return fmt.Errorf("engine.harvest: %w", err)
	}
	if len(owned) == 0 {
		return nil
	}

	// When the current floor listing is already ours there is nothing to
	// chase this cycle.
	floorListings, err := e.market.CollectionListings(ctx, e.cfg.Collection, 1)
	if err != nil {
		return fmt.Errorf("engine.harvest: fetch floor listing: %w", err)
	}
	if len(floorListings) > 0 && e.ownListing(floorListings[:1]) {
		slog.Info("harvest: floor listing is ours, skipping")
		return nil
	}

	target := math.Max(harvestFloorPrice, floor-e.cfg.Policy.HarvestUndercut)
	slog.Info("harvest: target price", "target", target, "floor", floor)

	for _, nft := range owned {
		// Volume inventory relists through the flip cycle, not here.
		pos, err := e.ledger.Get(ctx, nft.Contract, nft.Identifier)
		if err != nil {
			slog.Warn("harvest: ledger lookup failed", "token", nft.Identifier, "err", err)
			continue
		}
		if pos != nil {
			continue
		}

		listings, err := e.market.NFTListings(ctx, nft.Contract, nft.Identifier, 1)
		if err != nil {
			slog.Warn("harvest: listings fetch failed", "token", nft.Identifier, "err", err)
			continue
		}

		if len(listings) > 0 && e.ownListing(listings) &&
			math.Abs(listings[0].Price-target) < harvestPriceEpsilon {
			slog.Info("harvest: already at target", "token", nft.Identifier)
			continue
		}

		if _, err := e.market.CreateListing(ctx, nft.Contract, nft.Identifier, target, time.Time{}); err != nil {
			slog.Warn("harvest: listing failed", "token", nft.Identifier, "err", err)
			continue
		}

		e.recentlyListed.mark(nft.Key())
		slog.Info("harvest: listed", "token", nft.Identifier, "price", target)
		e.cast.Log("success", fmt.Sprintf("Harvest: listed %s at %.6f %s",
			nft.Identifier, target, e.cfg.NativeSymbol))

		// One update per cycle.
		return nil
	}

	return nil
}
