package generic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
)

// Budget describes one rate limited resource, as reported in response headers.
type Budget struct {
	Name            string
	RemainingHeader string
	ResetHeader     string
	// Threshold is the remaining amount at, or under, which requests pause.
	Threshold int
}

// GroqBudgets are the daily request and per minute token limits Groq reports.
var GroqBudgets = []Budget{
	{Name: "requests", RemainingHeader: "x-ratelimit-remaining-requests", ResetHeader: "x-ratelimit-reset-requests", Threshold: 1},
	{Name: "tokens", RemainingHeader: "x-ratelimit-remaining-tokens", ResetHeader: "x-ratelimit-reset-tokens", Threshold: 50},
}

type budgetState struct {
	Budget
	remaining int
	resetAt   time.Time
}

// RateLimiter tracks the budgets reported by the completions endpoint and
// pauses the next request while one is nearly spent. The zero value never
// pauses.
type RateLimiter struct {
	budgets []budgetState
	debug   bool
}

func NewRateLimiter(budgets ...Budget) RateLimiter {
	rl := RateLimiter{
		debug: misc.Truthy(os.Getenv("DEBUG")) || misc.Truthy(os.Getenv("DEBUG_RATE_LIMIT")),
	}
	for _, b := range budgets {
		rl.budgets = append(rl.budgets, budgetState{Budget: b})
	}
	return rl
}

// UpdateFromHeaders refreshes every budget found in h. Budgets missing from h
// are forgotten, malformed values are errors.
func (r *RateLimiter) UpdateFromHeaders(h http.Header) error {
	var errs []error
	for i := range r.budgets {
		b := &r.budgets[i]
		b.remaining, b.resetAt = 0, time.Time{}
		remStr, resetStr := h.Get(b.RemainingHeader), h.Get(b.ResetHeader)
		if remStr == "" || resetStr == "" {
			continue
		}
		rem, err := strconv.Atoi(remStr)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to parse %v: %w", b.RemainingHeader, err))
			continue
		}
		resetAt, err := parseReset(resetStr)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to parse %v: %w", b.ResetHeader, err))
			continue
		}
		b.remaining, b.resetAt = rem, resetAt
		if r.debug {
			ancli.Noticef("rate limit %v: %v remaining, reset at: %v\n", b.Name, rem, resetAt.Format(time.TimeOnly))
		}
	}
	return errors.Join(errs...)
}

// Integer resets below this are taken as seconds from now, the rest as unix
// timestamps.
const minUnixReset = 1_000_000_000

// parseReset accepts durations ("2m59.56s", "7.66s"), unix timestamps and
// plain seconds ("30", "1.5").
func parseReset(s string) (time.Time, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return time.Now().Add(d), nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < minUnixReset {
			return time.Now().Add(time.Duration(n) * time.Second), nil
		}
		return time.Unix(n, 0), nil
	}
	if sec, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Now().Add(time.Duration(sec * float64(time.Second))), nil
	}
	return time.Time{}, fmt.Errorf("unknown reset format: '%v'", s)
}

// pause returns how long to wait before the next request, and which budget
// it waits for.
func (r *RateLimiter) pause() (time.Duration, *budgetState) {
	var longest time.Duration
	var which *budgetState
	for i := range r.budgets {
		b := &r.budgets[i]
		if b.resetAt.IsZero() || b.remaining > b.Threshold {
			continue
		}
		if d := time.Until(b.resetAt); d > longest {
			longest, which = d, b
		}
	}
	return longest, which
}

// WaitIfNeeded blocks while any budget is nearly spent, or until ctx is done.
func (r *RateLimiter) WaitIfNeeded(ctx context.Context) {
	d, b := r.pause()
	if b == nil {
		return
	}
	ancli.Warnf("rate limit nearly reached, %v %v remaining. Pausing for %v\n", b.remaining, b.Name, d.Round(time.Second))
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
