package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jfortea/floorbot/internal/domain"
	"github.com/jfortea/floorbot/internal/ports"
)

// Config holds every tunable of the trading engine. All risk parameters
// (cooldowns, caps, tolerances, markups, expiries) live here rather than as
// constants: each one changes how much capital a cycle can commit.
type Config struct {
	Collection string

	PollInterval time.Duration
	// CycleTimeout bounds one full cycle including all external calls, so a
	// hung marketplace call surfaces as a cycle error instead of stalling
	// the loop forever.
	CycleTimeout time.Duration

	Policy domain.StrategyPolicy

	// WrapBuffer is added on top of the shortfall when wrapping, absorbing
	// price drift between the balance check and settlement.
	WrapBuffer float64
	// GasBuffer is added when unwrapping before a purchase.
	GasBuffer float64

	// PurchaseCooldown gates volume-trading buys globally.
	PurchaseCooldown time.Duration
	// RecentPurchaseWindow suppresses relisting a token before the purchase
	// is visible to marketplace reads.
	RecentPurchaseWindow time.Duration
	// RecentListingWindow suppresses duplicate listing submissions before
	// the marketplace indexes the previous one.
	RecentListingWindow time.Duration

	MaxOwned       int     // inventory cap for the volume-trading flip cycle
	FloorTolerance float64 // max fraction above floor for a volume buy, e.g. 0.01
	VolumeMarkup   float64 // immediate relist markup over buy price, e.g. 0.015
	// VolumeRelistFactor prices reconciler relists of volume inventory at
	// floor×factor, e.g. 1.02.
	VolumeRelistFactor float64
	VolumeListingTTL   time.Duration // volume inventory must cycle fast

	SniperScanLimit  int // bounded prefix of the collection scanned per cycle
	ListingAttempts  int
	ListingRetryWait time.Duration
	AccountPageLimit int
	OfferFetchLimit  int

	// RemoveOnSale deletes a ledger position once its token leaves the
	// wallet. Off by default: positions double as trade history.
	RemoveOnSale bool

	NativeSymbol  string
	WrappedSymbol string
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval: 30 * time.Second,
		CycleTimeout: 60 * time.Second,
		Policy: domain.StrategyPolicy{
			MaxOfferFractionOfFloor: 0.985,
			BidIncrement:            0.0001,
			UndercutAmount:          0.005,
			OfferDuration:           10 * time.Minute,
			SniperThreshold:         0.7,
			HarvestUndercut:         0.001,
		},
		WrapBuffer:           0.001,
		GasBuffer:            0.01,
		PurchaseCooldown:     30 * time.Second,
		RecentPurchaseWindow: 2 * time.Minute,
		RecentListingWindow:  2 * time.Minute,
		MaxOwned:             4,
		FloorTolerance:       0.01,
		VolumeMarkup:         0.015,
		VolumeRelistFactor:   1.02,
		VolumeListingTTL:     10 * time.Minute,
		SniperScanLimit:      20,
		ListingAttempts:      3,
		ListingRetryWait:     2 * time.Second,
		AccountPageLimit:     100,
		OfferFetchLimit:      10,
		NativeSymbol:         "ETH",
		WrappedSymbol:        "WETH",
	}
}

// Engine is the trading orchestrator. It owns all mutable trading state
// (tracked offers, cooldown caches, the volume purchase gate) and runs one
// cycle at a time; the dashboard goroutine is the only concurrent writer,
// and it only touches the control plane, never this state.
type Engine struct {
	cfg      Config
	market   ports.Marketplace
	wallet   ports.Wallet
	ledger   ports.Ledger
	control  ports.ControlPlane
	cast     ports.Broadcaster
	notifier ports.Notifier

	tracked           map[string]struct{}
	recentlyPurchased *cooldownCache
	recentlyListed    *cooldownCache
	lastVolumeBuy     time.Time

	now func() time.Time
}

// New creates an engine with all collaborators injected.
func New(
	cfg Config,
	market ports.Marketplace,
	wallet ports.Wallet,
	ledger ports.Ledger,
	control ports.ControlPlane,
	cast ports.Broadcaster,
	notifier ports.Notifier,
) *Engine {
	if cfg.CycleTimeout <= 0 {
		cfg.CycleTimeout = 2 * cfg.PollInterval
	}
	return &Engine{
		cfg:               cfg,
		market:            market,
		wallet:            wallet,
		ledger:            ledger,
		control:           control,
		cast:              cast,
		notifier:          notifier,
		tracked:           make(map[string]struct{}),
		recentlyPurchased: newCooldownCache(cfg.RecentPurchaseWindow),
		recentlyListed:    newCooldownCache(cfg.RecentListingWindow),
		now:               time.Now,
	}
}

// Run executes cycles at the configured interval until the context is
// cancelled or the operator requests a stop. A failed cycle is logged and
// the loop proceeds; only the stop request (or ctx) ends it.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("engine starting",
		"collection", e.cfg.Collection,
		"interval", e.cfg.PollInterval,
	)

	if stop := e.step(ctx); stop {
		return nil
	}

	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("engine stopped", "reason", "context cancelled")
			e.shutdown()
			return nil
		case <-ticker.C:
			if stop := e.step(ctx); stop {
				return nil
			}
		}
	}
}

// step runs one cycle and then drains the operator control signals. Signals
// arriving mid-cycle take effect here, never inside a running step.
func (e *Engine) step(ctx context.Context) (stop bool) {
	if err := e.runCycle(ctx); err != nil {
		slog.Error("cycle failed", "err", err)
		e.cast.Log("error", fmt.Sprintf("Cycle failed: %v", err))
	}

	if e.control.TakeCancelRequest() {
		e.cast.Log("info", "Canceling all offers...")
		ok, failed := e.CancelAllTracked(ctx)
		e.cast.Log("success", fmt.Sprintf("Offer cancellation done: %d ok, %d failed", ok, failed))
	}

	if e.control.StopRequested() {
		slog.Info("engine stopped", "reason", "operator request")
		e.cast.Log("info", "Stopping: canceling all offers...")
		e.CancelAllTracked(ctx)
		e.cast.Log("info", "Bot stopped")
		e.shutdown()
		return true
	}
	return false
}

// RunOnce executes exactly one cycle. Used by the -once flag.
func (e *Engine) RunOnce(ctx context.Context) error {
	return e.runCycle(ctx)
}

// runCycle is one full pass: observe → bid → harvest → snipe → volume →
// reconcile. Component errors below the observation step are logged and the
// cycle continues; every side-effecting step re-reads its toggle.
func (e *Engine) runCycle(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.CycleTimeout)
	defer cancel()

	start := e.now()
	report := domain.CycleReport{
		CycleID: uuid.New().String(),
		At:      start,
	}

	obs, err := e.observe(ctx)
	if err != nil {
		return fmt.Errorf("engine.runCycle: observe: %w", err)
	}
	report.Observation = obs

	e.broadcastStats(ctx, obs)

	toggles := e.control.Toggles()

	e.maybeBid(ctx, obs, toggles, &report)

	if toggles.Harvest {
		if err := e.harvest(ctx, obs.Floor); err != nil {
			slog.Warn("harvest failed", "err", err)
		}
	}

	if toggles.Sniper {
		if err := e.snipe(ctx, obs.Floor, &report); err != nil {
			slog.Warn("sniper scan failed", "err", err)
		}
	}

	if toggles.Volume {
		if err := e.volumeTrade(ctx, obs.Floor, &report); err != nil {
			slog.Warn("volume trade failed", "err", err)
		}
	}

	// Volume trading manages its own relist path end to end; running the
	// broad reconciler next to it would double-list the same inventory.
	if !toggles.Volume {
		if err := e.reconcileListings(ctx, obs.Floor, toggles, &report); err != nil {
			slog.Warn("listing reconciler failed", "err", err)
		}
	}

	if positions, err := e.ledger.All(ctx); err == nil {
		report.Positions = positions
	}
	if e.notifier != nil {
		if err := e.notifier.Notify(ctx, report); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	slog.Info("cycle complete",
		"floor", obs.Floor,
		"best_offer", obs.BestOffer,
		"ours", obs.BestOfferOurs,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// observe fetches the cycle's market snapshot. A floor fetch failure aborts
// the cycle; a failed offer fetch degrades to "no best offer" the way the
// rest of the cycle can survive.
func (e *Engine) observe(ctx context.Context) (domain.MarketObservation, error) {
	floor, err := e.market.CollectionFloor(ctx, e.cfg.Collection)
	if err != nil {
		return domain.MarketObservation{}, fmt.Errorf("fetch floor: %w", err)
	}

	obs := domain.MarketObservation{Floor: floor}

	offers, err := e.market.CollectionOffers(ctx, e.cfg.Collection, e.cfg.OfferFetchLimit)
	if err != nil {
		slog.Warn("could not fetch collection offers", "err", err)
		return obs, nil
	}

	if best, ok := bestOffer(offers); ok {
		obs.BestOffer = best.Price
		obs.BestOfferOurs = domain.SameAddress(best.Offerer, e.wallet.Address())
	}

	if e.cfg.Policy.UseSecondBest && len(offers) >= 2 {
		obs.SecondBestOffer = offers[1].Price
	}

	return obs, nil
}

// bestOffer picks the offer to compete against: the best single-item offer
// when one exists, otherwise the top offer (already per-item priced by the
// marketplace adapter).
func bestOffer(offers []domain.Offer) (domain.Offer, bool) {
	if len(offers) == 0 {
		return domain.Offer{}, false
	}
	for _, o := range offers {
		if o.Quantity == 1 {
			return o, true
		}
	}
	return offers[0], true
}

// maybeBid runs the bidding step: skip when we already hold the best offer,
// price via the strategy, fund, place. No pre-cancellation of the previous
// offer — offers carry a short expiry and a fresh one supersedes in practice.
func (e *Engine) maybeBid(ctx context.Context, obs domain.MarketObservation, toggles domain.Toggles, report *domain.CycleReport) {
	if obs.BestOfferOurs {
		slog.Info("best offer is already ours", "price", obs.BestOffer)
		e.cast.Log("info", "Skipping - already have the best offer")
		return
	}

	target, ok := domain.PriceOffer(obs.BestOffer, obs.SecondBestOffer, obs.Floor, e.cfg.Policy)
	if !ok {
		slog.Info("no valid offer", "floor", obs.Floor, "best_offer", obs.BestOffer)
		e.cast.Log("info", "No valid offer (exceeds safety threshold)")
		return
	}

	if !toggles.Bidding {
		slog.Info("bidding disabled, skipping offer", "target", target)
		return
	}

	e.cast.Log("info", fmt.Sprintf("Target offer: %.6f %s", target, e.cfg.NativeSymbol))

	if err := e.ensureWrapped(ctx, target); err != nil {
		slog.Warn("could not fund offer", "err", err)
		e.cast.Log("error", fmt.Sprintf("Failed to fund offer: %v", err))
		return
	}

	if err := e.placeOffer(ctx, target); err != nil {
		slog.Warn("offer placement failed", "err", err)
		e.cast.Log("error", fmt.Sprintf("Failed to place offer: %v", err))
		return
	}

	report.OfferPlaced = true
	report.OfferPrice = target
}

// broadcastStats pushes the cycle snapshot to the dashboard. Balance fetch
// failures degrade to a zero balance in the frame.
func (e *Engine) broadcastStats(ctx context.Context, obs domain.MarketObservation) {
	wrapped, err := e.wallet.WrappedBalance(ctx)
	if err != nil {
		slog.Warn("could not fetch wrapped balance", "err", err)
	}

	stats := domain.Stats{
		Floor:          obs.Floor,
		BestOffer:      obs.BestOffer,
		OurBest:        obs.BestOfferOurs,
		WrappedBalance: wrapped,
		NativeSymbol:   e.cfg.NativeSymbol,
		WrappedSymbol:  e.cfg.WrappedSymbol,
	}
	if obs.BestOfferOurs {
		stats.YourOffer = obs.BestOffer
	}
	e.cast.Stats(stats)
}

// ownedInCollection returns the wallet's tokens in the target collection.
func (e *Engine) ownedInCollection(ctx context.Context) ([]domain.NFT, error) {
	nfts, err := e.market.NFTsByAccount(ctx, e.wallet.Address(), e.cfg.AccountPageLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch owned NFTs: %w", err)
	}

	var owned []domain.NFT
	for _, n := range nfts {
		if n.Collection == e.cfg.Collection {
			owned = append(owned, n)
		}
	}
	return owned, nil
}

// ownListing reports whether any of the listings was made by this account.
func (e *Engine) ownListing(listings []domain.Listing) bool {
	for _, l := range listings {
		if domain.SameAddress(l.Maker, e.wallet.Address()) {
			return true
		}
	}
	return false
}

func (e *Engine) shutdown() {
	if err := e.ledger.Close(); err != nil {
		slog.Warn("ledger close failed", "err", err)
	}
}
