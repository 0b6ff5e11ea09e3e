package engine

// reconcile.go — (re)lists owned inventory that lacks an active listing.
//
// The marketplace read API lags behind submitted transactions by an
// unbounded, variable amount, so the remote "already listed" check alone
// produces duplicate listings. The layered skips below combine the remote
// read (source of truth when available) with short-horizon local memory for
// the window where the remote is not yet consistent.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jfortea/floorbot/internal/domain"
)

func (e *Engine) reconcileListings(ctx context.Context, floor float64, toggles domain.Toggles, report *domain.CycleReport) error {
	owned, err := e.ownedInCollection(ctx)
	if err != nil {
		return fmt.Errorf("engine.reconcileListings: %w", err)
	}
	if len(owned) == 0 {
		return nil
	}

	slog.Info("reconciling inventory", "owned", len(owned))

	for _, nft := range owned {
		key := nft.Key()

		// The purchase path intends to relist this token itself, or the
		// read is stale and listing now would price it wrong.
		if e.recentlyPurchased.active(key) {
			slog.Debug("reconcile: recently purchased, skipping", "token", nft.Identifier)
			continue
		}

		// A listing we submitted may not be indexed yet.
		if e.recentlyListed.active(key) {
			slog.Debug("reconcile: recently listed, skipping", "token", nft.Identifier)
			continue
		}

		listings, err := e.market.NFTListings(ctx, nft.Contract, nft.Identifier, 10)
		if err != nil {
			slog.Warn("reconcile: listings fetch failed", "token", nft.Identifier, "err", err)
			continue
		}
		if e.ownListing(listings) {
			slog.Debug("reconcile: already listed", "token", nft.Identifier)
			continue
		}

		pos, err := e.ledger.Get(ctx, nft.Contract, nft.Identifier)
		if err != nil {
			slog.Warn("reconcile: ledger lookup failed", "token", nft.Identifier, "err", err)
			continue
		}

		var price float64
		var expiry time.Time
		if pos != nil {
			// Volume inventory must cycle fast: floor plus a small margin,
			// short lifetime.
			price = domain.Round6(floor * e.cfg.VolumeRelistFactor)
			expiry = e.now().Add(e.cfg.VolumeListingTTL)
			slog.Info("reconcile: relisting volume item",
				"token", nft.Identifier, "price", price, "bought_at", pos.BuyPrice)
		} else {
			if toggles.Harvest {
				// Regular inventory is the harvest flow's to manage.
				slog.Debug("reconcile: reserved for harvest", "token", nft.Identifier)
				continue
			}
			price = domain.PriceListing(floor, e.cfg.Policy)
			slog.Info("reconcile: listing item", "token", nft.Identifier, "price", price)
		}

		if e.listWithRetry(ctx, nft, price, expiry) {
			e.recentlyListed.mark(key)
			report.Listed++
		}
	}

	if e.cfg.RemoveOnSale {
		e.pruneSoldPositions(ctx, owned)
	}

	return nil
}

// listWithRetry submits a listing with a bounded number of attempts and a
// fixed wait between them. After the last failure the token is simply left
// for the next poll cycle — the outer loop is the retry horizon.
func (e *Engine) listWithRetry(ctx context.Context, nft domain.NFT, price float64, expiry time.Time) bool {
	for attempt := 1; attempt <= e.cfg.ListingAttempts; attempt++ {
		_, err := e.market.CreateListing(ctx, nft.Contract, nft.Identifier, price, expiry)
		if err == nil {
			slog.Info("listed", "token", nft.Identifier, "price", price, "attempt", attempt)
			e.cast.Log("success", fmt.Sprintf("Listed %s at %.6f %s",
				nft.Identifier, price, e.cfg.NativeSymbol))
			return true
		}

		slog.Warn("listing attempt failed",
			"token", nft.Identifier,
			"attempt", attempt,
			"max_attempts", e.cfg.ListingAttempts,
			"err", err,
		)
		if attempt < e.cfg.ListingAttempts {
			select {
			case <-time.After(e.cfg.ListingRetryWait):
			case <-ctx.Done():
				return false
			}
		}
	}

	e.cast.Log("error", fmt.Sprintf("Could not list %s after %d attempts",
		nft.Identifier, e.cfg.ListingAttempts))
	return false
}

// pruneSoldPositions removes ledger positions whose token is no longer in
// the wallet. Only runs when RemoveOnSale is enabled; the default keeps
// positions as trade history.
func (e *Engine) pruneSoldPositions(ctx context.Context, owned []domain.NFT) {
	positions, err := e.ledger.All(ctx)
	if err != nil {
		slog.Warn("reconcile: ledger read failed", "err", err)
		return
	}

	held := make(map[string]struct{}, len(owned))
	for _, n := range owned {
		held[n.Key()] = struct{}{}
	}

	for _, pos := range positions {
		key := domain.TokenKey(pos.Contract, pos.Identifier)
		if _, ok := held[key]; ok {
			continue
		}
		// Do not prune inside the purchase-visibility window: the token may
		// be ours already without the read showing it yet.
		if e.recentlyPurchased.active(key) {
			continue
		}
		if err := e.ledger.Remove(ctx, pos.Contract, pos.Identifier); err != nil {
			slog.Warn("reconcile: position removal failed", "token", pos.Identifier, "err", err)
			continue
		}
		slog.Info("reconcile: removed sold position", "token", pos.Identifier, "buy_price", pos.BuyPrice)
	}
}
