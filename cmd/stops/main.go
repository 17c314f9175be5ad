package main

import (
	"context"
	"flag"
	"log"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"trend-signal-bot/internal/docstore"
	"trend-signal-bot/internal/interfaces"
	"trend-signal-bot/internal/logger"
	"trend-signal-bot/internal/notify"
	"trend-signal-bot/internal/stoploss"
	"trend-signal-bot/internal/store"
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
		log.Println("Interrupted; finishing current position...")
		cancel()
	}()

	ds, err := openStore(ctx, cfg)
	must(err)
	defer ds.Close()

	mgr := stoploss.New(ds,
		stoploss.WithNotifier(buildNotifier(cfg)),
		stoploss.WithThresholds(stoploss.Thresholds{
			BreakevenR: cfg.StopLoss.BreakevenR,
			TrailingR:  cfg.StopLoss.TrailingR,
		}))

	sum, err := mgr.Run(ctx)
	if err != nil && ctx.Err() == nil {
		logger.ErrorWithErr(ctx, "Stop-loss batch failed", err)
	}

	log.Printf("Stop-loss run: %d processed, %d updated, %d skipped, %d failed",
		sum.Processed, sum.Updated, sum.Skipped, sum.Failed)
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
