package engine

// offers.go — collection offer placement and the tracked-offer set. The set
// records every hash this process placed; it is the sole authority for
// "offers we believe are live" and is never reconciled against the
// marketplace, so a naturally expired offer simply ages out of relevance.

import (
	"context"
	"fmt"
	"log/slog"
)

// placeOffer places a collection-wide bid and tracks its hash for later
// bulk cancellation.
func (e *Engine) placeOffer(ctx context.Context, amount float64) error {
	expiry := e.now().Add(e.cfg.Policy.OfferDuration)

	hash, err := e.market.CreateCollectionOffer(ctx, e.cfg.Collection, amount, expiry)
	if err != nil {
		return fmt.Errorf("engine.placeOffer: %w", err)
	}

	e.tracked[hash] = struct{}{}
	slog.Info("offer placed",
		"hash", hash,
		"amount", amount,
		"expires_in", e.cfg.Policy.OfferDuration,
	)
	e.cast.Log("success", fmt.Sprintf("Offer placed (expires in %s)", e.cfg.Policy.OfferDuration))
	return nil
}

// CancelAllTracked attempts to cancel every tracked offer and empties the
// set unconditionally: a hash whose cancellation failed is removed anyway,
// because the offer self-expires and keeping the hash only grows the set.
// Failures are logged, never escalated — cancellation is advisory.
func (e *Engine) CancelAllTracked(ctx context.Context) (succeeded, failed int) {
	if len(e.tracked) == 0 {
		slog.Info("no tracked offers to cancel")
		return 0, 0
	}

	slog.Info("canceling tracked offers", "count", len(e.tracked))

	for hash := range e.tracked {
		if err := e.market.CancelOrder(ctx, hash); err != nil {
			slog.Warn("offer cancellation failed, dropping from tracking anyway",
				"hash", hash, "err", err)
			failed++
		} else {
			slog.Info("offer canceled", "hash", hash)
			succeeded++
		}
		delete(e.tracked, hash)
	}

	if failed > 0 {
		e.cast.Log("warn", fmt.Sprintf("%d offer(s) could not be canceled; they expire on their own", failed))
	}
	return succeeded, failed
}

// TrackedOfferCount returns the number of offers this process believes are
// live.
func (e *Engine) TrackedOfferCount() int {
	return len(e.tracked)
}
