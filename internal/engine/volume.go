package engine

// volume.go — the buy-then-relist flip cycle. Terminal on the first
// disqualifying gate; the order of gates matters, cheapest checks first.
// The purchase itself is never retried: a failed fulfillment usually means
// someone else took the listing, and a blind retry risks paying twice.

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jfortea/floorbot/internal/domain"
)

func (e *Engine) volumeTrade(ctx context.Context, floor float64, report *domain.CycleReport) error {
	// Gate 1: global purchase cooldown, backoff against racing the
	// reconciler with back-to-back buys.
	if since := e.now().Sub(e.lastVolumeBuy); since < e.cfg.PurchaseCooldown {
		slog.Info("volume: cooldown active",
			"remaining", (e.cfg.PurchaseCooldown - since).Round(time.Second))
		return nil
	}

	// Gate 2: inventory cap bounds the capital locked in the flip cycle.
	owned, err := e.ownedInCollection(ctx)
	if err != nil {
		return fmt.Errorf("engine.volumeTrade: %w", err)
	}
	if len(owned) >= e.cfg.MaxOwned {
		slog.Info("volume: inventory cap reached", "owned", len(owned), "cap", e.cfg.MaxOwned)
		return nil
	}

	// Discovery: the collection's canonical contract address comes from its
	// own token list; search results can carry cross-listed entries.
	contract, err := e.collectionContract(ctx)
	if err != nil {
		return fmt.Errorf("engine.volumeTrade: %w", err)
	}

	listings, err := e.market.CollectionListings(ctx, e.cfg.Collection, 100)
	if err != nil {
		return fmt.Errorf("engine.volumeTrade: fetch listings: %w", err)
	}

	matching := listings[:0:0]
	for _, l := range listings {
		if domain.SameAddress(l.Contract, contract) {
			matching = append(matching, l)
		}
	}
	if len(matching) == 0 {
		slog.Info("volume: no listings match collection contract", "contract", contract)
		return nil
	}

	sort.Slice(matching, func(i, j int) bool { return matching[i].Price < matching[j].Price })
	cheapest := matching[0]

	// Gate 3: a cheapest listing notably above floor is stale or mispriced
	// data; do not buy blind against it.
	if cheapest.Price > floor*(1+e.cfg.FloorTolerance) {
		slog.Info("volume: cheapest listing too far above floor",
			"price", cheapest.Price, "floor", floor, "tolerance", e.cfg.FloorTolerance)
		return nil
	}

	slog.Info("volume: buying cheapest listing",
		"token", cheapest.Identifier, "price", cheapest.Price, "floor", floor)
	e.cast.Log("info", fmt.Sprintf("Volume: buying %s at %.6f %s",
		cheapest.Identifier, cheapest.Price, e.cfg.NativeSymbol))

	if err := e.ensureNative(ctx, cheapest.Price); err != nil {
		return fmt.Errorf("engine.volumeTrade: funding: %w", err)
	}

	if err := e.market.FulfillListing(ctx, cheapest); err != nil {
		e.cast.Log("error", fmt.Sprintf("Volume: buy failed: %v", err))
		return fmt.Errorf("engine.volumeTrade: fulfill: %w", err)
	}

	e.cast.Log("success", fmt.Sprintf("Volume: purchased %s at %.6f %s",
		cheapest.Identifier, cheapest.Price, e.cfg.NativeSymbol))

	// Bookkeeping before any relist attempt, so a relist failure still
	// leaves the position visible to the reconciler next cycle.
	e.lastVolumeBuy = e.now()
	key := domain.TokenKey(cheapest.Contract, cheapest.Identifier)
	e.recentlyPurchased.mark(key)

	pos := domain.VolumePosition{
		ID:          uuid.New().String(),
		Contract:    cheapest.Contract,
		Identifier:  cheapest.Identifier,
		BuyPrice:    cheapest.Price,
		PurchasedAt: e.now(),
		Collection:  e.cfg.Collection,
	}
	if err := e.ledger.Upsert(ctx, pos); err != nil {
		slog.Warn("volume: ledger upsert failed", "token", cheapest.Identifier, "err", err)
	}
	report.VolumeBought = true

	e.relistAfterBuy(ctx, cheapest, report)
	return nil
}

// relistAfterBuy lists the just-bought token at buy price plus markup. The
// reconciler may already have acted on the fresh ledger row, so re-check for
// an existing own listing first. A listing failure here is logged only —
// the position exists, the reconciler retries next cycle.
func (e *Engine) relistAfterBuy(ctx context.Context, bought domain.Listing, report *domain.CycleReport) {
	price := domain.Round6(bought.Price * (1 + e.cfg.VolumeMarkup))

	existing, err := e.market.NFTListings(ctx, bought.Contract, bought.Identifier, 5)
	if err != nil {
		slog.Warn("volume: could not check existing listings, proceeding", "err", err)
	} else if e.ownListing(existing) {
		slog.Info("volume: already listed, skipping relist", "token", bought.Identifier)
		return
	}

	expiry := e.now().Add(e.cfg.VolumeListingTTL)
	if _, err := e.market.CreateListing(ctx, bought.Contract, bought.Identifier, price, expiry); err != nil {
		slog.Warn("volume: relist failed, reconciler will retry",
			"token", bought.Identifier, "err", err)
		e.cast.Log("error", fmt.Sprintf("Volume: failed to list %s: %v", bought.Identifier, err))
		return
	}

	e.recentlyListed.mark(domain.TokenKey(bought.Contract, bought.Identifier))
	report.Listed++
	slog.Info("volume: relisted", "token", bought.Identifier, "price", price)
	e.cast.Log("success", fmt.Sprintf("Volume: listed %s at %.6f %s (buy +%.1f%%)",
		bought.Identifier, price, e.cfg.NativeSymbol, e.cfg.VolumeMarkup*100))
}

// collectionContract resolves the collection's canonical contract address
// from its first token.
func (e *Engine) collectionContract(ctx context.Context) (string, error) {
	nfts, err := e.market.NFTsByCollection(ctx, e.cfg.Collection, 1)
	if err != nil {
		return "", fmt.Errorf("resolve collection contract: %w", err)
	}
	if len(nfts) == 0 {
		return "", fmt.Errorf("resolve collection contract: collection %q has no tokens", e.cfg.Collection)
	}
	return nfts[0].Contract, nil
}
