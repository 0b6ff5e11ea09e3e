package engine

// funds.go — balance management. Offers settle in the wrapped asset,
// purchases in the native asset; both paths top up on demand with a buffer
// and report failure to the caller, which abandons the action for this
// cycle. No automatic retry: the next poll retries naturally.

import (
	"context"
	"fmt"
	"log/slog"
)

// ensureWrapped guarantees the wallet holds at least required wrapped asset,
// wrapping the shortfall plus a small buffer when short.
func (e *Engine) ensureWrapped(ctx context.Context, required float64) error {
	balance, err := e.wallet.WrappedBalance(ctx)
	if err != nil {
		return fmt.Errorf("engine.ensureWrapped: balance: %w", err)
	}
	if balance >= required {
		return nil
	}

	amount := required - balance + e.cfg.WrapBuffer
	slog.Info("wrapping native asset",
		"amount", amount,
		"balance", balance,
		"required", required,
	)
	e.cast.Log("info", fmt.Sprintf("Wrapping %.6f %s...", amount, e.cfg.NativeSymbol))

	if err := e.wallet.Wrap(ctx, amount); err != nil {
		return fmt.Errorf("engine.ensureWrapped: wrap %.6f: %w", amount, err)
	}
	e.cast.Log("success", fmt.Sprintf("Wrapped %.6f %s", amount, e.cfg.NativeSymbol))
	return nil
}

// ensureNative guarantees the wallet holds at least required native asset
// before a purchase, unwrapping the shortfall plus a gas margin when short.
func (e *Engine) ensureNative(ctx context.Context, required float64) error {
	balance, err := e.wallet.NativeBalance(ctx)
	if err != nil {
		return fmt.Errorf("engine.ensureNative: balance: %w", err)
	}
	if balance >= required {
		return nil
	}

	amount := required - balance + e.cfg.GasBuffer
	slog.Info("unwrapping for purchase",
		"amount", amount,
		"balance", balance,
		"required", required,
	)
	e.cast.Log("info", fmt.Sprintf("Unwrapping %.6f %s...", amount, e.cfg.NativeSymbol))

	if err := e.wallet.Unwrap(ctx, amount); err != nil {
		return fmt.Errorf("engine.ensureNative: unwrap %.6f: %w", amount, err)
	}
	e.cast.Log("success", fmt.Sprintf("Unwrapped %.6f %s", amount, e.cfg.NativeSymbol))
	return nil
}
