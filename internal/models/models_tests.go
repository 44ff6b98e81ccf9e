// This package contains test intended to be used by the implementations of the
// StreamCompleter interface
package models

import (
	"context"
	"testing"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
)

// StreamCompleter_Context_Test asserts that a StreamCompleter stops streaming once
// its context is cancelled.
func StreamCompleter_Context_Test(t *testing.T, s StreamCompleter) {
	testboil.ReturnsOnContextCancel(t, func(ctx context.Context) {
		ch, err := s.StreamCompletions(ctx, Chat{
			ID:       "test",
			Messages: []Message{{Role: "user", Content: "test"}},
		})
		if err != nil {
			return
		}
		for range ch {
		}
	}, time.Second)
}
