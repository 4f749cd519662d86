package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/sahmly/engine/internal/domain"
)

// Client reads KYC eligibility from the profile service. Transient
// failures are retried with exponential backoff; the caller sees only
// the final verdict or error.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new profile service client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type eligibilityResponse struct {
	CanInvest     bool `json:"can_invest"`
	EmailVerified bool `json:"email_verified"`
}

// GetEligibility implements usecase.EligibilityService.
func (c *Client) GetEligibility(ctx context.Context, userID string) (*domain.Eligibility, error) {
	var result eligibilityResponse

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			fmt.Sprintf("%s/api/v1/users/%s/eligibility", c.baseURL, userID), nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			return json.NewDecoder(resp.Body).Decode(&result)
		case resp.StatusCode >= 500:
			return fmt.Errorf("profile service unavailable: %d", resp.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("profile service returned %d", resp.StatusCode))
		}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxElapsedTime = 3 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, err
	}

	return &domain.Eligibility{
		UserID:        userID,
		CanInvest:     result.CanInvest,
		EmailVerified: result.EmailVerified,
	}, nil
}

// StaticEligibility is a fixed-verdict implementation for local
// development and tests.
type StaticEligibility struct {
	CanInvest     bool
	EmailVerified bool
}

// GetEligibility returns the fixed verdict.
func (s *StaticEligibility) GetEligibility(_ context.Context, userID string) (*domain.Eligibility, error) {
	return &domain.Eligibility{
		UserID:        userID,
		CanInvest:     s.CanInvest,
		EmailVerified: s.EmailVerified,
	}, nil
}
