package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"trend-signal-bot/internal/docstore"
	"trend-signal-bot/internal/interfaces"
	"trend-signal-bot/internal/logger"
	"trend-signal-bot/internal/notify"
	"trend-signal-bot/internal/provider"
	"trend-signal-bot/internal/signal"
	"trend-signal-bot/internal/store"
	"trend-signal-bot/internal/ta"
	"trend-signal-bot/internal/types"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := store.LoadConfig(*configPath)
	must(err)
	must(logger.Init())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigc := make(chan os.Signal, 1)
	ossignal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		log.Println("Interrupted; finishing current symbol...")
		cancel()
	}()

	ds, err := openStore(ctx, cfg)
	must(err)
	defer ds.Close()

	chain := buildChain(cfg)
	notifier := buildNotifier(cfg)

	var scraper *provider.CorporateActionScraper
	if cfg.CorporateActions.Enabled {
		scraper = provider.NewCorporateActionScraper(30 * time.Second)
	}

	snapCfg := signal.SnapshotConfig{
		RSIPeriod:        cfg.Indicators.RSIPeriod,
		ATRPeriod:        cfg.Indicators.ATRPeriod,
		AvgVolumeWindow:  cfg.Indicators.AvgVolumeWindow,
		VolumeSpikeMult:  cfg.Indicators.VolumeSpikeMult,
		SupertrendPeriod: cfg.Supertrend.Period,
		SupertrendMult:   cfg.Supertrend.Multiplier,
		WeeklyPeriod:     cfg.WeeklySupertrend.Period,
		WeeklyMult:       cfg.WeeklySupertrend.Multiplier,
	}

	to := time.Now()
	from := to.AddDate(0, 0, -cfg.LookbackDays)

	var scanned, skipped, failed int
	for _, sym := range cfg.Universe {
		if ctx.Err() != nil {
			break
		}

		op := logger.StartOperation(ctx, "scan_symbol", "symbol", sym)
		opCtx := op.GetContext()

		bars, attempts, err := chain.Fetch(opCtx, sym, from, to)
		if err != nil {
			logger.Warn(opCtx, "No provider delivered bars, skipping symbol",
				"symbol", sym, "attempts", len(attempts), "error", err)
			skipped++
			op.EndWithError(err)
			continue
		}

		if scraper != nil {
			actions, err := scraper.FetchActions(opCtx, sym)
			if err == nil {
				for _, a := range actions {
					bars = ta.AdjustForAction(bars, a.ExDate, a.Ratio)
				}
			}
		}

		snap, err := signal.BuildSnapshot(sym, bars, snapCfg)
		if err != nil {
			logger.Warn(opCtx, "Snapshot build failed, skipping symbol", "symbol", sym, "error", err)
			skipped++
			op.EndWithError(err)
			continue
		}

		if err := ds.Upsert(opCtx, docstore.Technicals, sym, &snap); err != nil {
			logger.ErrorWithErr(opCtx, "Failed to persist snapshot", err, "symbol", sym)
			failed++
			op.EndWithError(err)
			continue
		}

		logger.Signal(opCtx, sym, snap.Signal, snap.Score,
			"price", snap.LastPrice, "supertrend_dir", snap.SupertrendDir)

		if snap.Signal == types.SignalStrongBuy || snap.Signal == types.SignalStrongSell {
			alertKey := fmt.Sprintf("%s-%s", sym, snap.AsOf.Format("2006-01-02"))
			if err := ds.Upsert(opCtx, docstore.Alerts, alertKey, &snap); err != nil {
				logger.Warn(opCtx, "Failed to persist alert", "symbol", sym, "error", err)
			}
			msg := fmt.Sprintf("%s: %s (score %+d) at %.2f", sym, snap.Signal, snap.Score, snap.LastPrice)
			if err := notifier.Send(opCtx, msg); err != nil {
				logger.Warn(opCtx, "Failed to send alert", "symbol", sym, "error", err)
			}
		}

		scanned++
		op.End("score", snap.Score)
	}

	log.Printf("Scan complete: %d scanned, %d skipped, %d failed", scanned, skipped, failed)
	_ = logger.Shutdown(context.Background())
}

func openStore(ctx context.Context, cfg *store.Config) (interfaces.DocStore, error) {
	if cfg.Store.Driver == "POSTGRES" {
		dsn := cfg.Store.PostgresDSN
		if v := os.Getenv("POSTGRES_DSN"); v != "" {
			dsn = v
		}
		return docstore.OpenPostgres(ctx, dsn)
	}
	return docstore.NewMemory(), nil
}

func buildChain(cfg *store.Config) *provider.Chain {
	providers := make([]interfaces.BarProvider, 0, len(cfg.Providers.Order))
	for _, name := range cfg.Providers.Order {
		switch name {
		case "nse":
			providers = append(providers,
				provider.NewNSE(time.Duration(cfg.Providers.NSE.RateLimitMs)*time.Millisecond))
		case "yahoo":
			providers = append(providers, provider.NewYahoo())
		case "kite":
			providers = append(providers, provider.NewKite(
				os.Getenv("KITE_API_KEY"),
				os.Getenv("KITE_ACCESS_TOKEN"),
				cfg.Providers.Kite.Tokens))
		}
	}
	return provider.NewChain(providers...)
}

func buildNotifier(cfg *store.Config) interfaces.Notifier {
	if !cfg.Alerts.Enabled {
		return notify.Noop{}
	}
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	chatID := os.Getenv("TELEGRAM_CHAT_ID")
	if token == "" || chatID == "" {
		log.Println("Alerts enabled but TELEGRAM_BOT_TOKEN/TELEGRAM_CHAT_ID unset; alerts disabled")
		return notify.Noop{}
	}
	return notify.NewTelegram(token, chatID)
}
