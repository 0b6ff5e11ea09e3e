package onchain

// wallet.go — the hot wallet. Implements ports.Wallet (balances, wrap,
// unwrap) and the marketplace adapter's Signer (digest signing, raw
// transaction submission). Every state-changing call waits for its receipt:
// the engine's next step assumes the previous one settled.

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
)

var wethABI abi.ABI

func init() {
	var err error
	wethABI, err = abi.JSON(strings.NewReader(`[
		{"name":"balanceOf","type":"function","stateMutability":"view",
		 "inputs":[{"name":"account","type":"address"}],
		 "outputs":[{"name":"","type":"uint256"}]},
		{"name":"deposit","type":"function","stateMutability":"payable",
		 "inputs":[],"outputs":[]},
		{"name":"withdraw","type":"function",
		 "inputs":[{"name":"wad","type":"uint256"}],"outputs":[]}
	]`))
	if err != nil {
		panic("weth abi: " + err.Error())
	}
}

// Wallet holds the signing key and the RPC connection for one chain.
type Wallet struct {
	client  *ethclient.Client
	key     *ecdsa.PrivateKey
	address common.Address
	chain   ChainConfig
	wrapped common.Address
}

// NewWallet dials the RPC endpoint and derives the address from the key.
// privateKeyHex may carry a 0x prefix.
func NewWallet(rpcURL, privateKeyHex string, chain ChainConfig) (*Wallet, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("onchain.NewWallet: invalid private key: %w", err)
	}

	if rpcURL == "" {
		rpcURL = chain.DefaultRPCURL
	}
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("onchain.NewWallet: dial rpc %s: %w", rpcURL, err)
	}

	return &Wallet{
		client:  client,
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		chain:   chain,
		wrapped: common.HexToAddress(chain.WrappedToken),
	}, nil
}

// Address returns the wallet address.
func (w *Wallet) Address() string {
	return w.address.Hex()
}

// NativeBalance returns the native asset balance in whole units.
func (w *Wallet) NativeBalance(ctx context.Context) (float64, error) {
	wei, err := w.client.BalanceAt(ctx, w.address, nil)
	if err != nil {
		return 0, fmt.Errorf("onchain.NativeBalance: %w", err)
	}
	return weiToEther(wei), nil
}

// WrappedBalance returns the wrapped-native ERC-20 balance in whole units.
func (w *Wallet) WrappedBalance(ctx context.Context) (float64, error) {
	callData, err := wethABI.Pack("balanceOf", w.address)
	if err != nil {
		return 0, fmt.Errorf("onchain.WrappedBalance: pack: %w", err)
	}

	result, err := w.client.CallContract(ctx, ethereum.CallMsg{
		To:   &w.wrapped,
		Data: callData,
	}, nil)
	if err != nil {
		return 0, fmt.Errorf("onchain.WrappedBalance: call: %w", err)
	}

	vals, err := wethABI.Unpack("balanceOf", result)
	if err != nil || len(vals) == 0 {
		return 0, fmt.Errorf("onchain.WrappedBalance: unpack: %w", err)
	}
	return weiToEther(vals[0].(*big.Int)), nil
}

// Wrap deposits native asset into the wrapped contract.
func (w *Wallet) Wrap(ctx context.Context, amount float64) error {
	callData, err := wethABI.Pack("deposit")
	if err != nil {
		return fmt.Errorf("onchain.Wrap: pack: %w", err)
	}
	if err := w.submit(ctx, w.wrapped, etherToWei(amount), callData); err != nil {
		return fmt.Errorf("onchain.Wrap: %.6f: %w", amount, err)
	}
	slog.Info("wrapped native asset", "amount", amount, "token", w.chain.WrappedSymbol)
	return nil
}

// Unwrap withdraws wrapped asset back to native.
func (w *Wallet) Unwrap(ctx context.Context, amount float64) error {
	callData, err := wethABI.Pack("withdraw", etherToWei(amount))
	if err != nil {
		return fmt.Errorf("onchain.Unwrap: pack: %w", err)
	}
	if err := w.submit(ctx, w.wrapped, big.NewInt(0), callData); err != nil {
		return fmt.Errorf("onchain.Unwrap: %.6f: %w", amount, err)
	}
	slog.Info("unwrapped to native asset", "amount", amount, "token", w.chain.NativeSymbol)
	return nil
}

// SignDigest signs a 32-byte digest, returning a 65-byte signature with the
// recovery id adjusted to the on-chain convention.
func (w *Wallet) SignDigest(digest common.Hash) ([]byte, error) {
	sig, err := crypto.Sign(digest.Bytes(), w.key)
	if err != nil {
		return nil, fmt.Errorf("onchain.SignDigest: %w", err)
	}
	sig[64] += 27
	return sig, nil
}

// SendTransaction submits a raw call and waits for the receipt.
func (w *Wallet) SendTransaction(ctx context.Context, to string, value *big.Int, calldata []byte) error {
	if err := w.submit(ctx, common.HexToAddress(to), value, calldata); err != nil {
		return fmt.Errorf("onchain.SendTransaction: to %s: %w", to, err)
	}
	return nil
}

// submit signs, sends and waits for one transaction. Gas is estimated with
// headroom; estimation failures surface before any funds move.
func (w *Wallet) submit(ctx context.Context, to common.Address, value *big.Int, data []byte) error {
	nonce, err := w.client.PendingNonceAt(ctx, w.address)
	if err != nil {
		return fmt.Errorf("nonce: %w", err)
	}
	gasPrice, err := w.client.SuggestGasPrice(ctx)
	if err != nil {
		return fmt.Errorf("gas price: %w", err)
	}
	gasLimit, err := w.client.EstimateGas(ctx, ethereum.CallMsg{
		From:  w.address,
		To:    &to,
		Value: value,
		Data:  data,
	})
	if err != nil {
		return fmt.Errorf("estimate gas: %w", err)
	}
	gasLimit = gasLimit * 12 / 10

	tx := types.NewTransaction(nonce, to, value, gasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(big.NewInt(w.chain.ID)), w.key)
	if err != nil {
		return fmt.Errorf("sign tx: %w", err)
	}

	if err := w.client.SendTransaction(ctx, signed); err != nil {
		return fmt.Errorf("send tx: %w", err)
	}

	slog.Info("transaction sent", "hash", signed.Hash().Hex(), "to", to.Hex())

	receipt, err := bind.WaitMined(ctx, w.client, signed)
	if err != nil {
		return fmt.Errorf("wait mined %s: %w", signed.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("tx %s reverted", signed.Hash().Hex())
	}
	return nil
}

// weiToEther converts base units to whole units without float drift on the
// division.
func weiToEther(wei *big.Int) float64 {
	return decimal.NewFromBigInt(wei, -18).InexactFloat64()
}

// etherToWei converts whole units to base units.
func etherToWei(amount float64) *big.Int {
	return decimal.NewFromFloat(amount).Shift(18).BigInt()
}
