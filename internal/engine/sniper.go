package engine

// sniper.go — buys the first listing priced well below floor. Scans only a
// bounded prefix of the collection (full scans are expensive against a
// paginated API) and buys at most one item per cycle so the next
// reconciliation pass can assess the new state before more capital moves.

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jfortea/floorbot/internal/domain"
)

func (e *Engine) snipe(ctx context.Context, floor float64, report *domain.CycleReport) error {
	nfts, err := e.market.NFTsByCollection(ctx, e.cfg.Collection, e.cfg.SniperScanLimit)
	if err != nil {
		return fmt.Errorf("engine.snipe: fetch collection NFTs: %w", err)
	}
	if len(nfts) > e.cfg.SniperScanLimit {
		nfts = nfts[:e.cfg.SniperScanLimit]
	}

	threshold := floor * e.cfg.Policy.SniperThreshold

	for _, nft := range nfts {
		listings, err := e.market.NFTListings(ctx, nft.Contract, nft.Identifier, 1)
		if err != nil {
			// One bad token must not end the scan.
			slog.Debug("sniper: listings fetch failed", "token", nft.Identifier, "err", err)
			continue
		}
		if len(listings) == 0 {
			continue
		}

		listing := listings[0]
		if listing.Price >= threshold {
			continue
		}

		slog.Info("underpriced listing found",
			"token", nft.Identifier,
			"price", listing.Price,
			"floor_pct", listing.Price/floor*100,
		)
		e.cast.Log("info", fmt.Sprintf("Sniper: found %s at %.6f %s (%.1f%% of floor)",
			nft.Identifier, listing.Price, e.cfg.NativeSymbol, listing.Price/floor*100))

		if err := e.ensureNative(ctx, listing.Price); err != nil {
			slog.Warn("sniper: funding failed", "token", nft.Identifier, "err", err)
			continue
		}

		if err := e.market.FulfillListing(ctx, listing); err != nil {
			slog.Warn("sniper: buy failed", "token", nft.Identifier, "err", err)
			continue
		}

		slog.Info("sniped listing", "token", nft.Identifier, "price", listing.Price)
		e.cast.Log("success", fmt.Sprintf("Sniper: purchased %s at %.6f %s",
			nft.Identifier, listing.Price, e.cfg.NativeSymbol))
		report.Sniped = true
		return nil // one buy per cycle
	}

	return nil
}
