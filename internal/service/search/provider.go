package search

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"docvault/internal/config"
	"docvault/internal/domain/services"
)

// OpenAIClient implements the Embedder and Generator boundaries on an
// OpenAI-compatible API.
type OpenAIClient struct {
	client         *openai.Client
	embeddingModel string
	answerModel    string
}

// NewOpenAIClient creates the AI client from configuration.
func NewOpenAIClient(cfg *config.Config) (*OpenAIClient, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	return &OpenAIClient{
		client:         openai.NewClient(cfg.OpenAIAPIKey),
		embeddingModel: cfg.EmbeddingModel,
		answerModel:    cfg.AnswerModel,
	}, nil
}

// Embed turns texts into embedding vectors.
func (c *OpenAIClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(c.embeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}

	vectors := make([][]float32, len(resp.Data))
	for i, item := range resp.Data {
		vectors[i] = item.Embedding
	}
	return vectors, nil
}

// GenerateAnswer produces a completion for the prompt.
func (c *OpenAIClient) GenerateAnswer(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.answerModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

var (
	_ services.Embedder  = (*OpenAIClient)(nil)
	_ services.Generator = (*OpenAIClient)(nil)
)
