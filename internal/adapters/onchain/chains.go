package onchain

import "fmt"

// ChainConfig describes one supported EVM chain: where to reach it and
// which wrapped-native contract settles marketplace offers there.
type ChainConfig struct {
	Name          string
	ID            int64
	DefaultRPCURL string
	WrappedToken  string
	NativeSymbol  string
	WrappedSymbol string
}

var chains = map[string]ChainConfig{
	"ethereum": {
		Name:          "ethereum",
		ID:            1,
		DefaultRPCURL: "https://mainnet.infura.io/v3/YOUR_INFURA_KEY",
		WrappedToken:  "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		NativeSymbol:  "ETH",
		WrappedSymbol: "WETH",
	},
	"polygon": {
		Name:          "polygon",
		ID:            137,
		DefaultRPCURL: "https://polygon-rpc.com",
		WrappedToken:  "0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619",
		NativeSymbol:  "MATIC",
		WrappedSymbol: "WMATIC",
	},
	"base": {
		Name:          "base",
		ID:            8453,
		DefaultRPCURL: "https://mainnet.base.org",
		WrappedToken:  "0x4200000000000000000000000000000000000006",
		NativeSymbol:  "ETH",
		WrappedSymbol: "WETH",
	},
	"hyperevm": {
		Name:          "hyperevm",
		ID:            999,
		DefaultRPCURL: "https://rpc.hyperliquid.xyz/evm",
		WrappedToken:  "0x5555555555555555555555555555555555555555",
		NativeSymbol:  "HYPE",
		WrappedSymbol: "WHYPE",
	},
	"sepolia": {
		Name:          "sepolia",
		ID:            11155111,
		DefaultRPCURL: "https://sepolia.infura.io/v3/YOUR_INFURA_KEY",
		WrappedToken:  "0xfFf9976782d46CC05630D1f6eBAb18b2324d6B14",
		NativeSymbol:  "ETH",
		WrappedSymbol: "WETH",
	},
}

// Chain returns the configuration for a chain by name.
func Chain(name string) (ChainConfig, error) {
	cfg, ok := chains[name]
	if !ok {
		return ChainConfig{}, fmt.Errorf("onchain.Chain: unsupported chain %q", name)
	}
	return cfg, nil
}
