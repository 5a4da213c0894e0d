package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// HTTPGateway calls an external payment processor over HTTP. Calls go
// through a circuit breaker so a struggling processor is not hammered
// with settlement retries.
type HTTPGateway struct {
	client  *http.Client
	baseURL string
	cb      *gobreaker.CircuitBreaker
}

// NewHTTPGateway new HTTPGateway.
func NewHTTPGateway(baseURL string) *HTTPGateway {
	settings := gobreaker.Settings{
		Name:        "Payment-Gateway",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip if failure rate exceeds 50% after at least 10 requests
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
	}

	return &HTTPGateway{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		cb:      gobreaker.NewCircuitBreaker(settings),
	}
}

type releaseResponse struct {
	Reference string `json:"reference"`
}

// Release sends the fund movement to the processor.
func (g *HTTPGateway) Release(ctx context.Context, req ReleaseRequest) (string, error) {
	ref, err := g.cb.Execute(func() (interface{}, error) {
		return g.doRelease(ctx, req)
	})
	if err != nil {
		return "", err
	}
	return ref.(string), nil
}

func (g *HTTPGateway) doRelease(ctx context.Context, req ReleaseRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal gateway payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/release", bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create gateway request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call payment gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("payment gateway returned non-successful status code: %d", resp.StatusCode)
	}

	var out releaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return out.Reference, nil
}
