// Command rawdump fetches one bank and prints the rows exactly as the
// adapter extracted them, before any normalization. This is the first
// tool to reach for when a bank's numbers come out wrong: it shows
// whether the problem is in extraction or in parsing.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"uzrates/internal/config"
	"uzrates/internal/httpx"
	"uzrates/internal/source"
	"uzrates/internal/source/banks"
)

func main() {
	var (
		cfgPath    string
		bank       string
		timeoutSec int
	)
	flag.StringVar(&cfgPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
	flag.StringVar(&bank, "bank", "", "bank id to dump (required)")
	flag.IntVar(&timeoutSec, "timeout", 60, "fetch timeout seconds")
	flag.Parse()

	if bank == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	hc := httpx.New(time.Duration(timeoutSec) * time.Second)
	var src source.Source
	for _, s := range banks.All(hc, banks.Options{
		CBUSessionID:     cfg.Banks.CBUSessionID,
		AgrobankCookie:   cfg.Banks.AgrobankCookie,
		TengebankCookie:  cfg.Banks.TengebankCookie,
		HamkorbankCookie: cfg.Banks.HamkorbankCookie,
		ChromiumPath:     cfg.Banks.ChromiumPath,
		BrowserTimeout:   time.Duration(timeoutSec) * time.Second,
	}) {
		if s.Bank() == bank {
			src = s
			break
		}
	}
	if src == nil {
		log.Fatalf("unknown bank %q", bank)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSec)*time.Second)
	defer cancel()

	rows, err := src.Fetch(ctx)
	if err != nil {
		log.Fatalf("fetch %s: %v", bank, err)
	}
	log.Printf("%s: %d rows, rules %+v", bank, len(rows), src.Rules())

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		log.Fatal(err)
	}
}
