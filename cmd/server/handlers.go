package main

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"uzrates/internal/pipeline"
	"uzrates/internal/rates"
	"uzrates/internal/report"
	"uzrates/internal/store"
)

type ratesResponse struct {
	Rates []rates.Quote `json:"rates"`
	Best  []report.Best `json:"best"`
}

func router(st *store.Store, pipe *pipeline.Pipeline, adminToken string) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/rates", handleGetRates(st)).Methods(http.MethodGet)
	r.HandleFunc("/api/rates/report", handleReport(st)).Methods(http.MethodGet)
	r.HandleFunc("/api/rates/report.png", handleReportPNG(st)).Methods(http.MethodGet)
	r.HandleFunc("/api/rates/override", requireToken(adminToken, handleOverride(st))).Methods(http.MethodPost)
	r.HandleFunc("/api/run", requireToken(adminToken, handleRun(pipe))).Methods(http.MethodPost)

	r.Use(withCORS, withGzip, recoverPanic, limitBody)
	return r
}

func snapshotFilter(r *http.Request) store.Filter {
	return store.Filter{
		Currency: r.URL.Query().Get("currency"),
		Bank:     r.URL.Query().Get("bank"),
	}
}

func handleGetRates(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quotes := st.Snapshot(snapshotFilter(r))
		writeJSON(w, ratesResponse{Rates: quotes, Best: report.BestRates(quotes)})
	}
}

func handleReport(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quotes := st.Snapshot(snapshotFilter(r))
		if len(quotes) == 0 {
			http.Error(w, "no rates yet", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, report.Table(quotes))
	}
}

func handleReportPNG(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quotes := st.Snapshot(snapshotFilter(r))
		if len(quotes) == 0 {
			http.Error(w, "no rates yet", http.StatusNotFound)
			return
		}
		png, err := report.Image(quotes)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

type overrideBody struct {
	Bank     string `json:"bank"`
	Currency string `json:"currency"`
	Buy      string `json:"buy"`
	Sell     string `json:"sell"`
}

// handleOverride stores an operator-supplied quote verbatim. The next
// successful fetch for the same pair overwrites it.
func handleOverride(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var b overrideBody
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&b); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		if b.Bank == "" || b.Currency == "" {
			http.Error(w, "bank and currency are required", http.StatusBadRequest)
			return
		}
		q := rates.Quote{
			Bank:       strings.ToLower(b.Bank),
			Currency:   strings.ToUpper(b.Currency),
			ObservedAt: time.Now().UTC(),
		}
		if b.Buy != "" {
			d, err := decimal.NewFromString(b.Buy)
			if err != nil {
				http.Error(w, "bad buy value", http.StatusBadRequest)
				return
			}
			q.Buy = rates.D(d)
		}
		if b.Sell != "" {
			d, err := decimal.NewFromString(b.Sell)
			if err != nil {
				http.Error(w, "bad sell value", http.StatusBadRequest)
				return
			}
			q.Sell = rates.D(d)
		}
		if q.Empty() {
			http.Error(w, "at least one of buy or sell is required", http.StatusBadRequest)
			return
		}
		if err := st.Upsert(q); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, q)
	}
}

func handleRun(pipe *pipeline.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if bank := r.URL.Query().Get("bank"); bank != "" {
			res, err := pipe.RunOne(r.Context(), bank)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadGateway)
				return
			}
			writeJSON(w, res)
			return
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			pipe.Run(ctx)
		}()
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"status":"started"}`))
	}
}

func requireToken(token string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token == "" {
			http.Error(w, "admin endpoints disabled", http.StatusForbidden)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withGzip compresses response when client supports gzip.
func withGzip(next http.Handler) http.Handler {
	var gzPool = sync.Pool{New: func() any {
		// Prefer best speed to reduce CPU usage since payloads are small
		w, _ := gzip.NewWriterLevel(io.Discard, gzip.BestSpeed)
		return w
	}}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}
		gz := gzPool.Get().(*gzip.Writer)
		gz.Reset(w)
		defer func() {
			_ = gz.Close()
			gz.Reset(io.Discard)
			gzPool.Put(gz)
		}()
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Add("Vary", "Accept-Encoding")
		gw := gzipResponseWriter{ResponseWriter: w, Writer: gz}
		next.ServeHTTP(gw, r)
	})
}

type gzipResponseWriter struct {
	http.ResponseWriter
	Writer io.Writer
}

func (g gzipResponseWriter) Write(b []byte) (int, error) {
	return g.Writer.Write(b)
}

// recoverPanic protects handlers from panics.
func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// limitBody caps request body size to avoid memory abuse.
func limitBody(next http.Handler) http.Handler {
	const maxBody = 1 << 20 // 1MB
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		}
		next.ServeHTTP(w, r)
	})
}
