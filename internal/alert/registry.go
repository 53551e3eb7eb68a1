// Package alert keeps an in-memory registry of user-defined price conditions
// and evaluates them against fresh ticker snapshots. Registry lifetime is the
// process lifetime; nothing is persisted.
package alert

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"candlekit/internal/domain"

	"github.com/google/uuid"
)

// PriceSource supplies a fresh last price per pair. The fetch layer satisfies
// this; tests substitute a stub.
type PriceSource interface {
	Ticker(ctx context.Context, pair string) (*domain.Ticker, error)
}

type Option func(*Registry)

// WithRearm makes fired above/below alerts re-arm once the price returns to
// the other side of the threshold, instead of staying fired until removed.
func WithRearm() Option {
	return func(r *Registry) { r.oneShot = false }
}

func withIDFunc(newID func() string) Option {
	return func(r *Registry) { r.newID = newID }
}

// Registry is safe for concurrent Set/Remove/List/Check. Mutations happen
// under one mutex so per-id updates are linearizable; network fetches during
// Check run outside the lock.
type Registry struct {
	mu      sync.Mutex
	alerts  map[string]*domain.Alert
	now     func() time.Time
	newID   func() string
	oneShot bool
}

func NewRegistry(now func() time.Time, opts ...Option) *Registry {
	if now == nil {
		now = time.Now
	}
	r := &Registry{
		alerts:  make(map[string]*domain.Alert),
		now:     now,
		newID:   uuid.NewString,
		oneShot: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Set registers a new alert in the active state. A crossing alert cannot fire
// on its first evaluation: it has no prior price yet.
func (r *Registry) Set(pair string, condition domain.AlertCondition, threshold float64, message string) (domain.Alert, error) {
	pair, err := domain.NormalizePair(pair)
	if err != nil {
		return domain.Alert{}, err
	}
	if !condition.IsValid() {
		return domain.Alert{}, &domain.ValidationError{Field: "condition", Reason: fmt.Sprintf("unknown condition %q", condition)}
	}
	if threshold <= 0 {
		return domain.Alert{}, &domain.ValidationError{Field: "threshold", Reason: "threshold must be positive"}
	}
	if message == "" {
		message = fmt.Sprintf("%s price %s %g", pair, condition, threshold)
	}

	a := &domain.Alert{
		ID:        r.newID(),
		Pair:      pair,
		Condition: condition,
		Threshold: threshold,
		Message:   message,
		CreatedAt: r.now().UTC(),
	}

	r.mu.Lock()
	r.alerts[a.ID] = a
	r.mu.Unlock()
	return *a, nil
}

// List returns copies of registered alerts, optionally filtered by pair,
// ordered by creation time.
func (r *Registry) List(pair string) []domain.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Alert, 0, len(r.alerts))
	for _, a := range r.alerts {
		if pair != "" && a.Pair != pair {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Remove deletes an alert by id. A missing id yields NotFoundError and leaves
// the registry unchanged; removing twice is harmless.
func (r *Registry) Remove(id string) (domain.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.alerts[id]
	if !ok {
		return domain.Alert{}, &domain.NotFoundError{Kind: "alert", ID: id}
	}
	delete(r.alerts, id)
	return *a, nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.alerts)
}

type CheckError struct {
	Pair  string `json:"pair"`
	Error string `json:"error"`
}

type CheckReport struct {
	Checked      int            `json:"checked"`
	Fired        []domain.Alert `json:"fired,omitempty"`         // fired during this check
	AlreadyFired []domain.Alert `json:"already_fired,omitempty"` // fired on an earlier check, not removed
	Active       []domain.Alert `json:"active,omitempty"`
	Errors       []CheckError   `json:"errors,omitempty"`
}

// Check evaluates every alert matching pair (all pairs when empty) against a
// fresh price. One ticker is fetched per distinct pair regardless of how many
// alerts reference it. Crossing conditions compare the previous observation
// with the current one; the first observation only seeds lastKnownPrice.
func (r *Registry) Check(ctx context.Context, source PriceSource, pair string) (*CheckReport, error) {
	r.mu.Lock()
	pairs := make(map[string]struct{})
	ids := make([]string, 0, len(r.alerts))
	for id, a := range r.alerts {
		if pair != "" && a.Pair != pair {
			continue
		}
		pairs[a.Pair] = struct{}{}
		ids = append(ids, id)
	}
	r.mu.Unlock()

	report := &CheckReport{}
	prices := make(map[string]float64, len(pairs))
	for p := range pairs {
		ticker, err := source.Ticker(ctx, p)
		if err != nil {
			report.Errors = append(report.Errors, CheckError{Pair: p, Error: err.Error()})
			continue
		}
		prices[p] = ticker.Last
	}

	now := r.now().UTC()
	sort.Strings(ids)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		a, ok := r.alerts[id]
		if !ok {
			continue // removed while we fetched prices
		}
		price, ok := prices[a.Pair]
		if !ok {
			continue
		}
		report.Checked++

		prev := a.LastKnownPrice
		p := price
		a.LastKnownPrice = &p

		if a.Fired() {
			if r.oneShot || conditionHolds(a.Condition, a.Threshold, price, prev) {
				report.AlreadyFired = append(report.AlreadyFired, *a)
				continue
			}
			a.FiredAt = nil // re-arm policy: price is back on the other side
		}

		if conditionHolds(a.Condition, a.Threshold, price, prev) {
			firedAt := now
			a.FiredAt = &firedAt
			report.Fired = append(report.Fired, *a)
			continue
		}
		report.Active = append(report.Active, *a)
	}
	return report, nil
}

func conditionHolds(condition domain.AlertCondition, threshold, price float64, prev *float64) bool {
	switch condition {
	case domain.AlertAbove:
		return price > threshold
	case domain.AlertBelow:
		return price < threshold
	case domain.AlertCrossesAbove:
		return prev != nil && *prev <= threshold && price > threshold
	case domain.AlertCrossesBelow:
		return prev != nil && *prev >= threshold && price < threshold
	}
	return false
}
