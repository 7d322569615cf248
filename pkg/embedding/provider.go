package embedding

import "context"

// Provider defines the interface for generating text embeddings
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions reports the fixed output dimensionality of the provider.
	// Vectors of different dimensionalities must never share a table.
	Dimensions() int
}
