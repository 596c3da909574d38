package embedding

import (
	"context"
	"errors"

	"inklings-backend/domain/core/valueobjects"
	pkgerrors "inklings-backend/pkg/errors"
)

// ErrDisabled is returned when no embedding endpoint is configured
var ErrDisabled = errors.New("embedding provider is disabled")

// DisabledProvider fails every call. Nodes created without a provider are
// stored without vectors and stay out of similarity results.
type DisabledProvider struct{}

// NewDisabledProvider creates a provider that always fails
func NewDisabledProvider() *DisabledProvider {
	return &DisabledProvider{}
}

// EmbedText always reports the provider as disabled
func (p *DisabledProvider) EmbedText(context.Context, string) (valueobjects.Embedding, error) {
	return valueobjects.Embedding{}, pkgerrors.NewExternalError("embedding-api", ErrDisabled)
}
