// Package store keeps the latest quote per (bank, currency) pair in
// memory and, when opened with a path, mirrors every write into a
// badger database so rates survive restarts.
package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	badger "github.com/dgraph-io/badger/v3"

	"uzrates/internal/rates"
)

const keyPrefix = "rate/"

// Filter narrows a Snapshot. Empty fields match everything.
type Filter struct {
	Currency string
	Bank     string
}

type entry struct {
	mu sync.Mutex
	q  rates.Quote
}

// Store is safe for concurrent use. The outer lock guards the map
// shape; each entry has its own lock so writes to the same pair are
// serialized without blocking unrelated pairs.
type Store struct {
	mu      sync.RWMutex
	entries map[rates.Key]*entry
	db      *badger.DB
}

// NewMemory returns a store with no persistence.
func NewMemory() *Store {
	return &Store{entries: make(map[rates.Key]*entry)}
}

// Open opens (or creates) the badger database at path and loads every
// persisted quote back into memory.
func Open(path string) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	s := &Store{entries: make(map[rates.Key]*entry), db: db}
	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var q rates.Quote
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &q)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			s.entries[q.Key()] = &entry{q: q}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func dbKey(k rates.Key) []byte {
	return []byte(keyPrefix + strings.ToLower(k.Bank) + "/" + strings.ToUpper(k.Currency))
}

// Upsert replaces the stored quote for the quote's pair.
func (s *Store) Upsert(q rates.Quote) error {
	k := q.Key()
	s.mu.RLock()
	e := s.entries[k]
	s.mu.RUnlock()
	if e == nil {
		s.mu.Lock()
		e = s.entries[k]
		if e == nil {
			e = &entry{}
			s.entries[k] = e
		}
		s.mu.Unlock()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	// persist first so memory and disk never diverge on a write error
	if s.db != nil {
		val, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("encode %s/%s: %w", k.Bank, k.Currency, err)
		}
		err = s.db.Update(func(txn *badger.Txn) error {
			return txn.Set(dbKey(k), val)
		})
		if err != nil {
			return fmt.Errorf("persist %s/%s: %w", k.Bank, k.Currency, err)
		}
	}
	e.q = q
	return nil
}

func (s *Store) Get(k rates.Key) (rates.Quote, bool) {
	s.mu.RLock()
	e := s.entries[k]
	s.mu.RUnlock()
	if e == nil {
		return rates.Quote{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	// a failed first Upsert leaves the entry unfilled
	if e.q.Bank == "" {
		return rates.Quote{}, false
	}
	return e.q, true
}

// Snapshot returns matching quotes sorted by bank, then currency.
func (s *Store) Snapshot(f Filter) []rates.Quote {
	s.mu.RLock()
	es := make([]*entry, 0, len(s.entries))
	for k, e := range s.entries {
		if f.Bank != "" && !strings.EqualFold(f.Bank, k.Bank) {
			continue
		}
		if f.Currency != "" && !strings.EqualFold(f.Currency, k.Currency) {
			continue
		}
		es = append(es, e)
	}
	s.mu.RUnlock()

	out := make([]rates.Quote, 0, len(es))
	for _, e := range es {
		e.mu.Lock()
		if e.q.Bank != "" {
			out = append(out, e.q)
		}
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bank != out[j].Bank {
			return out[i].Bank < out[j].Bank
		}
		return out[i].Currency < out[j].Currency
	})
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
