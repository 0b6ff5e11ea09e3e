package ports

import "context"

// Wallet is the chain-side boundary: balances and conversion between the
// native asset and its wrapped ERC-20 form. Amounts are ether units.
type Wallet interface {
	// Address returns the account's checksummed address.
	Address() string

	// NativeBalance returns the spendable native-asset balance.
	NativeBalance(ctx context.Context) (float64, error)

	// WrappedBalance returns the wrapped-asset (WETH-style) balance.
	WrappedBalance(ctx context.Context) (float64, error)

	// Wrap converts native asset into the wrapped asset and waits for the
	// transaction to be mined.
	Wrap(ctx context.Context, amount float64) error

	// Unwrap converts wrapped asset back to native and waits for the
	// transaction to be mined.
	Unwrap(ctx context.Context, amount float64) error
}
