package source

import (
	"fmt"
	"sort"
)

// Registry maps a stable bank identifier to its adapter. The
// orchestrator dispatches over it instead of enumerating providers.
type Registry struct {
	byBank map[string]Source
}

func NewRegistry() *Registry {
	return &Registry{byBank: make(map[string]Source)}
}

// Register adds a source. Duplicate bank identifiers are a programming
// error: two adapters must never target the same store keys.
func (r *Registry) Register(s Source) error {
	if s.Bank() == "" {
		return fmt.Errorf("register: empty bank id")
	}
	if _, dup := r.byBank[s.Bank()]; dup {
		return fmt.Errorf("register: duplicate bank id %q", s.Bank())
	}
	r.byBank[s.Bank()] = s
	return nil
}

// MustRegister panics on error; for wiring in main.
func (r *Registry) MustRegister(s Source) {
	if err := r.Register(s); err != nil {
		panic(err)
	}
}

func (r *Registry) Get(bank string) (Source, bool) {
	s, ok := r.byBank[bank]
	return s, ok
}

// All returns every registered source ordered by bank id so runs and
// logs are deterministic.
func (r *Registry) All() []Source {
	out := make([]Source, 0, len(r.byBank))
	for _, s := range r.byBank {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bank() < out[j].Bank() })
	return out
}

func (r *Registry) Len() int { return len(r.byBank) }
