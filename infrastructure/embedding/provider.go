package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"inklings-backend/domain/core/valueobjects"
	pkgerrors "inklings-backend/pkg/errors"
)

// HTTPProvider is the anti-corruption layer in front of the external
// embedding API. Calls go through a circuit breaker so a degraded vector
// service cannot stall node creation.
type HTTPProvider struct {
	client   *http.Client
	endpoint string
	breaker  *gobreaker.CircuitBreaker
	logger   *zap.Logger
}

// NewHTTPProvider creates a provider for the embedding API endpoint
func NewHTTPProvider(endpoint string, timeout time.Duration, logger *zap.Logger) *HTTPProvider {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "embedding-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("embedding circuit state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &HTTPProvider{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
		breaker:  breaker,
		logger:   logger,
	}
}

type embedRequest struct {
	Text string `json:"text"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// EmbedText returns the vector for a text payload
func (p *HTTPProvider) EmbedText(ctx context.Context, text string) (valueobjects.Embedding, error) {
	result, err := p.breaker.Execute(func() (interface{}, error) {
		return p.callAPI(ctx, text)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return valueobjects.Embedding{}, pkgerrors.NewExternalError("embedding-api", err)
		}
		return valueobjects.Embedding{}, err
	}
	return result.(valueobjects.Embedding), nil
}

func (p *HTTPProvider) callAPI(ctx context.Context, text string) (valueobjects.Embedding, error) {
	payload, err := json.Marshal(embedRequest{Text: text})
	if err != nil {
		return valueobjects.Embedding{}, pkgerrors.Wrap(err, "failed to marshal embed request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return valueobjects.Embedding{}, pkgerrors.Wrap(err, "failed to build embed request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return valueobjects.Embedding{}, pkgerrors.NewExternalError("embedding-api", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return valueobjects.Embedding{}, pkgerrors.NewExternalError("embedding-api",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var body embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return valueobjects.Embedding{}, pkgerrors.NewExternalError("embedding-api", err)
	}

	vector, err := valueobjects.NewEmbedding(body.Embedding)
	if err != nil {
		return valueobjects.Embedding{}, pkgerrors.NewExternalError("embedding-api", err)
	}
	return vector, nil
}
