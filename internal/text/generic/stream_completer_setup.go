package generic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
)

var (
	ErrMissingAPIKey     = errors.New("api key not set")
	ErrInvalidCredential = errors.New("invalid api key")
	ErrUnknownModel      = errors.New("unknown model")
)

// Setup the completer with the given api key. If ModelsURL is set, the key
// is verified against it together with the configured model.
func (s *StreamCompleter) Setup(ctx context.Context, apiKey string) error {
	if apiKey == "" {
		return ErrMissingAPIKey
	}
	if s.client == nil {
		s.client = &http.Client{}
	}
	if s.URL == "" {
		s.URL = GroqURL
	}
	if s.Model == "" {
		s.Model = DefaultModel
	}
	s.limiter = NewRateLimiter(GroqBudgets...)
	s.apiKey = apiKey

	if misc.Truthy(os.Getenv("DEBUG")) || misc.Truthy(os.Getenv("DEBUG_CALL")) {
		s.debug = true
	}

	if s.ModelsURL == "" {
		return nil
	}
	return s.verify(ctx)
}

// verify lists the models available for the api key. Auth failures and
// models missing from the listing are errors.
func (s *StreamCompleter) verify(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.ModelsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %v", s.apiKey))
	res, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to verify api key: %w", err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)

	switch {
	case res.StatusCode == http.StatusUnauthorized, res.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %v", ErrInvalidCredential, res.Status)
	case res.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status code: %v, body: %v", res.Status, string(body))
	}

	var list modelList
	if err := json.Unmarshal(body, &list); err != nil {
		return fmt.Errorf("failed to decode model list: %w", err)
	}
	for _, m := range list.Data {
		if m.ID == s.Model {
			if s.debug {
				ancli.PrintOK(fmt.Sprintf("verified api key, model: '%v'\n", s.Model))
			}
			return nil
		}
	}
	return fmt.Errorf("%w: '%v'", ErrUnknownModel, s.Model)
}
