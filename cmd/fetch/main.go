// Command fetch runs one refresh cycle against the live bank sites and
// prints the result, without a server or a store on disk. Useful for
// checking adapters after a bank redesigns its page.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"uzrates/internal/config"
	"uzrates/internal/httpx"
	"uzrates/internal/pipeline"
	"uzrates/internal/report"
	"uzrates/internal/source"
	"uzrates/internal/source/banks"
	"uzrates/internal/store"
)

func main() {
	var (
		cfgPath    string
		bank       string
		asJSON     bool
		timeoutSec int
	)
	flag.StringVar(&cfgPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
	flag.StringVar(&bank, "bank", "", "fetch a single bank instead of all")
	flag.BoolVar(&asJSON, "json", false, "print quotes as JSON instead of a table")
	flag.IntVar(&timeoutSec, "timeout", 0, "override per-source timeout seconds")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if timeoutSec > 0 {
		cfg.Pipeline.HTTPTimeoutSec = timeoutSec
	}

	hc := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)
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
		reg.MustRegister(s)
	}

	st := store.NewMemory()
	pipe := pipeline.New(reg, st, pipeline.Config{
		MaxInFlight: cfg.Pipeline.MaxInFlight,
		Timeout:     time.Duration(cfg.Pipeline.HTTPTimeoutSec) * time.Second,
		Attempts:    cfg.Pipeline.Attempts,
		Backoff:     time.Duration(cfg.Pipeline.BackoffSec) * time.Second,
		Currencies:  cfg.Pipeline.Currencies,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if bank != "" {
		if _, err := pipe.RunOne(ctx, bank); err != nil {
			log.Fatalf("fetch %s: %v", bank, err)
		}
	} else {
		failed := 0
		for _, res := range pipe.Run(ctx) {
			if res.Err != nil {
				failed++
			}
		}
		if failed > 0 {
			log.Printf("%d of %d sources failed", failed, reg.Len())
		}
	}

	quotes := st.Snapshot(store.Filter{})
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(quotes); err != nil {
			log.Fatal(err)
		}
		return
	}
	fmt.Print(report.Table(quotes))
}
