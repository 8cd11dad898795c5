package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/ragbench/ragbench/internal/errs"
	"github.com/ragbench/ragbench/internal/models"
	"github.com/ragbench/ragbench/internal/scoring"
)

// Scorer posts evaluation requests to the external RAGAS pipeline service
// and decodes its per-case results. The HTTP call is the only long-blocking
// operation of a submission and is bounded by the client timeout plus the
// caller's context.
type Scorer struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New creates a remote scorer client. requestsPerMin <= 0 disables
// client-side rate limiting.
func New(endpoint string, timeout time.Duration, requestsPerMin int) *Scorer {
	var limiter *rate.Limiter
	if requestsPerMin > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMin)), 1)
	}

	return &Scorer{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: limiter,
	}
}

// Score submits the request to the scoring service and returns its
// per-case results. Every failure mode maps to a ScoringError.
func (s *Scorer) Score(ctx context.Context, request *models.EvaluationRequest) (*scoring.Result, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, errs.Scoring(err, "rate limit wait aborted")
		}
	}

	jsonBody, err := json.Marshal(request)
	if err != nil {
		return nil, errs.Scoring(err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, errs.Scoring(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errs.Scoring(err, "scoring service unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Scoring(err, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errs.Scoring(nil, "scoring service returned %d: %s", resp.StatusCode, string(body))
	}

	var result scoring.Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, errs.Scoring(err, "failed to unmarshal response")
	}

	if result.TestCaseResults == nil {
		return nil, errs.Scoring(nil, "scoring service returned no test_case_results")
	}

	return &result, nil
}

var _ scoring.Scorer = (*Scorer)(nil)
