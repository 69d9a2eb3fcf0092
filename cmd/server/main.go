package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"uzrates/internal/config"
	"uzrates/internal/httpx"
	"uzrates/internal/notify"
	"uzrates/internal/pipeline"
	"uzrates/internal/report"
	"uzrates/internal/schedule"
	"uzrates/internal/source"
	"uzrates/internal/source/banks"
	"uzrates/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	st, err := openStore(cfg.Store.Path)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer st.Close()

	hc := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)
	reg := buildRegistry(cfg, hc)
	pipe := pipeline.New(reg, st, pipeline.Config{
		MaxInFlight: cfg.Pipeline.MaxInFlight,
		Timeout:     time.Duration(cfg.Pipeline.HTTPTimeoutSec) * time.Second,
		Attempts:    cfg.Pipeline.Attempts,
		Backoff:     time.Duration(cfg.Pipeline.BackoffSec) * time.Second,
		BreakAfter:  cfg.Pipeline.BreakAfter,
		Cooldown:    time.Duration(cfg.Pipeline.CooldownMin) * time.Minute,
		Currencies:  cfg.Pipeline.Currencies,
	})

	sink := buildSink(cfg, hc)

	refresh := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		pipe.Run(ctx)
		notifyReport(ctx, st, sink)
	}

	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		log.Fatalf("timezone %q: %v", cfg.Schedule.Timezone, err)
	}
	sched := schedule.New(loc)
	if err := sched.AddDaily(cfg.Schedule.DailyAt, refresh); err != nil {
		log.Fatalf("schedule: %v", err)
	}
	if cfg.Schedule.Hourly {
		if err := sched.AddHourly(refresh); err != nil {
			log.Fatalf("schedule: %v", err)
		}
	}
	sched.Start()
	log.Printf("scheduler: %d triggers in %s", sched.Entries(), loc)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router(st, pipe, cfg.Admin.Token),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.RequestTimeoutSec) * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server listening on :%s (%d banks)", cfg.Server.Port, reg.Len())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = sched.Stop(shutdownCtx)
	_ = srv.Shutdown(shutdownCtx)
}

func buildRegistry(cfg config.Config, hc *httpx.Client) *source.Registry {
	reg := source.NewRegistry()
	for _, s := range banks.All(hc, banks.Options{
		CBUSessionID:     cfg.Banks.CBUSessionID,
		AgrobankCookie:   cfg.Banks.AgrobankCookie,
		TengebankCookie:  cfg.Banks.TengebankCookie,
		HamkorbankCookie: cfg.Banks.HamkorbankCookie,
		ChromiumPath:     cfg.Banks.ChromiumPath,
		BrowserTimeout:   time.Duration(cfg.Pipeline.BrowserTimeoutSec) * time.Second,
		Disabled:         cfg.Banks.Disabled,
	}) {
		if cfg.Pipeline.MinIntervalSec > 0 {
			s = &source.MinInterval{S: s, Interval: time.Duration(cfg.Pipeline.MinIntervalSec) * time.Second}
		}
		reg.MustRegister(s)
	}
	return reg
}

func openStore(path string) (*store.Store, error) {
	if path == "" {
		return store.NewMemory(), nil
	}
	return store.Open(path)
}

func buildSink(cfg config.Config, hc *httpx.Client) notify.Sink {
	if cfg.Telegram.Enabled {
		sink, err := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID,
			notify.WithHTTPClient(hc.HTTP))
		if err == nil {
			return sink
		}
		log.Printf("telegram disabled: %v", err)
	}
	return notify.Logger{L: log.Default()}
}

func notifyReport(ctx context.Context, st *store.Store, sink notify.Sink) {
	quotes := st.Snapshot(store.Filter{})
	if len(quotes) == 0 {
		return
	}
	if err := sink.SendText(ctx, report.Table(quotes)); err != nil {
		log.Printf("notify: %v", err)
		return
	}
	png, err := report.Image(quotes)
	if err != nil {
		log.Printf("notify: render image: %v", err)
		return
	}
	if err := sink.SendImage(ctx, "exchange rates", png); err != nil {
		log.Printf("notify: %v", err)
	}
}
