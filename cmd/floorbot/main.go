package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jfortea/floorbot/config"
	"github.com/jfortea/floorbot/internal/adapters/dashboard"
	"github.com/jfortea/floorbot/internal/adapters/notify"
	"github.com/jfortea/floorbot/internal/adapters/onchain"
	"github.com/jfortea/floorbot/internal/adapters/opensea"
	"github.com/jfortea/floorbot/internal/adapters/storage"
	"github.com/jfortea/floorbot/internal/engine"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one cycle and exit")
	balance := flag.Bool("balance", false, "print wallet balances and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print the position table each cycle (default: compact 1-line)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	chain, err := onchain.Chain(cfg.Market.Chain)
	if err != nil {
		slog.Error("unknown chain", "err", err, "chain", cfg.Market.Chain)
		os.Exit(1)
	}

	wallet, err := onchain.NewWallet(cfg.Wallet.RPCURL, cfg.Wallet.PrivateKey, chain)
	if err != nil {
		slog.Error("failed to init wallet", "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *balance {
		printBalances(ctx, wallet, chain)
		return
	}

	slog.Info("floorbot starting",
		"config", *configPath,
		"collection", cfg.Bot.Collection,
		"chain", chain.Name,
		"wallet", wallet.Address(),
		"interval", cfg.PollInterval(),
		"once", *once,
	)

	client := opensea.NewClient("", cfg.Market.APIKey)
	market := opensea.NewAPI(client, wallet, opensea.Config{
		Chain:        chain.Name,
		ChainID:      chain.ID,
		WrappedToken: chain.WrappedToken,
		FeeBps:       int64(cfg.Market.FeeBps),
	})

	ledger, err := storage.NewLedger(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open ledger", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer ledger.Close()

	dash := dashboard.NewServer(cfg.Dashboard.Addr, ledger)
	if cfg.DashboardEnabled() && !*once {
		dash.Start()
		defer func() {
			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			dash.Shutdown(shutdownCtx)
		}()
	}

	notifier := notify.NewConsole(*table)

	engCfg := engineConfig(cfg, chain)
	eng := engine.New(engCfg, market, wallet, ledger, dash, dash, notifier)

	if *once {
		if err := eng.RunOnce(ctx); err != nil {
			slog.Error("cycle failed", "err", err)
			os.Exit(1)
		}
		return
	}

	if err := eng.Run(ctx); err != nil {
		slog.Error("engine exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("floorbot stopped cleanly")
}

// engineConfig maps the YAML onto the engine defaults. Only keys the
// operator set move off their defaults.
func engineConfig(cfg *config.Config, chain onchain.ChainConfig) engine.Config {
	ec := engine.DefaultConfig()
	ec.Collection = cfg.Bot.Collection
	ec.PollInterval = cfg.PollInterval()
	ec.NativeSymbol = chain.NativeSymbol
	ec.WrappedSymbol = chain.WrappedSymbol
	ec.RemoveOnSale = cfg.Bot.RemoveOnSale

	if cfg.Bot.OfferFraction > 0 {
		ec.Policy.MaxOfferFractionOfFloor = cfg.Bot.OfferFraction
	}
	if cfg.Bot.OfferMinutes > 0 {
		ec.Policy.OfferDuration = time.Duration(cfg.Bot.OfferMinutes) * time.Minute
	}
	if cfg.Bot.SniperThreshold > 0 {
		ec.Policy.SniperThreshold = cfg.Bot.SniperThreshold
	}
	if cfg.Bot.MaxOwned > 0 {
		ec.MaxOwned = cfg.Bot.MaxOwned
	}
	if cfg.Bot.FloorTolerance > 0 {
		ec.FloorTolerance = cfg.Bot.FloorTolerance
	}
	if cfg.Bot.VolumeMarkup > 0 {
		ec.VolumeMarkup = cfg.Bot.VolumeMarkup
	}
	if cfg.Bot.CooldownSeconds > 0 {
		ec.PurchaseCooldown = cfg.PurchaseCooldown()
	}
	return ec
}

func printBalances(ctx context.Context, wallet *onchain.Wallet, chain onchain.ChainConfig) {
	native, err := wallet.NativeBalance(ctx)
	if err != nil {
		slog.Error("failed to read native balance", "err", err)
		os.Exit(1)
	}
	wrapped, err := wallet.WrappedBalance(ctx)
	if err != nil {
		slog.Error("failed to read wrapped balance", "err", err)
		os.Exit(1)
	}

	fmt.Printf("wallet:  %s\n", wallet.Address())
	fmt.Printf("chain:   %s\n", chain.Name)
	fmt.Printf("%-8s %.6f\n", chain.NativeSymbol+":", native)
	fmt.Printf("%-8s %.6f\n", chain.WrappedSymbol+":", wrapped)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	out := io.Writer(os.Stdout)
	if cfg.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, rotated)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	slog.SetDefault(slog.New(handler))
}
