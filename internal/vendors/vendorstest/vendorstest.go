package vendorstest

import (
	"context"
	"testing"

	"github.com/baalimago/searchchat/internal/models"
)

// Vendor is a StreamCompleter which is configured with an api key before use.
type Vendor interface {
	models.StreamCompleter
	Setup(ctx context.Context, apiKey string) error
}

// RunSetupTests runs common Setup tests for vendors.
func RunSetupTests(t *testing.T, requiresKey bool, newVendor func() Vendor) {
	t.Helper()

	t.Run("with_key", func(t *testing.T) {
		v := newVendor()
		if err := v.Setup(context.Background(), "some-key"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	if requiresKey {
		t.Run("no_key", func(t *testing.T) {
			v := newVendor()
			if err := v.Setup(context.Background(), ""); err == nil {
				t.Fatal("expected error when api key is empty")
			}
		})
	}
}
