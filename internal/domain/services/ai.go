package services

import "context"

// Embedder turns texts into fixed-dimension embedding vectors. Treated as
// slow and unreliable; only best-effort paths call it.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces a natural-language answer from a prompt.
type Generator interface {
	GenerateAnswer(ctx context.Context, prompt string) (string, error)
}
