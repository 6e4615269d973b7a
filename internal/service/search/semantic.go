package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
	"docvault/internal/domain/services"
)

// Source identifies one retrieved file backing an answer.
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
	Tags string `json:"tags,omitempty"`
}

// Answer is the semantic-search response: generated text plus the files it
// was grounded on.
type Answer struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// Service answers natural-language questions over the archive: embed the
// question, retrieve nearest-neighbour files, summarize via the generator.
type Service struct {
	fileRepo  repositories.FileRepository
	embedder  services.Embedder
	generator services.Generator
	root      string
	limit     int
	logger    *slog.Logger
}

// NewService creates the semantic search service.
func NewService(
	fileRepo repositories.FileRepository,
	embedder services.Embedder,
	generator services.Generator,
	root string,
	limit int,
	logger *slog.Logger,
) *Service {
	return &Service{
		fileRepo:  fileRepo,
		embedder:  embedder,
		generator: generator,
		root:      root,
		limit:     limit,
		logger:    logger,
	}
}

// Ask runs the retrieve-then-generate pipeline. With no retrievable files
// the generator is skipped entirely and a canned answer is returned.
func (s *Service) Ask(ctx context.Context, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrValidation)
	}

	vectors, err := s.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embed question: provider returned no vectors")
	}

	hits, err := s.fileRepo.NearestByEmbedding(ctx, vectors[0], s.limit)
	if err != nil {
		return nil, fmt.Errorf("retrieve documents: %w", err)
	}

	if len(hits) == 0 {
		return &Answer{
			Answer: "No documents in the archive match this question yet.",
		}, nil
	}

	answer, err := s.generator.GenerateAnswer(ctx, s.buildPrompt(question, hits))
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	sources := make([]Source, 0, len(hits))
	for _, hit := range hits {
		sources = append(sources, Source{
			ID:   hit.ID,
			Name: hit.Name,
			Path: strings.TrimPrefix(hit.StoragePath, s.root+"/"),
			Tags: strings.Join(hit.Tags, ", "),
		})
	}

	s.logger.Info("question answered", "sources", len(sources))

	return &Answer{Answer: answer, Sources: sources}, nil
}

// buildPrompt renders the retrieved files into a grounding block for the
// generator.
func (s *Service) buildPrompt(question string, hits []models.File) string {
	var b strings.Builder
	b.WriteString("You are the assistant for a document archive. Answer the question using only the document list below. If the documents are not relevant, say so.\n\nDocuments:\n")
	for i, hit := range hits {
		fmt.Fprintf(&b, "%d. %s (path: %s", i+1, hit.Name, strings.TrimPrefix(hit.StoragePath, s.root+"/"))
		if len(hit.Tags) > 0 {
			fmt.Fprintf(&b, "; tags: %s", strings.Join(hit.Tags, ", "))
		}
		b.WriteString(")\n")
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	return b.String()
}
