package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubFileRepo covers only the retrieval method the service calls.
type stubFileRepo struct {
	repositories.FileRepository
	hits []models.File
	err  error
}

func (s *stubFileRepo) NearestByEmbedding(ctx context.Context, embedding []float32, limit int) ([]models.File, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.hits) > limit {
		return s.hits[:limit], nil
	}
	return s.hits, nil
}

type stubEmbedder struct {
	err   error
	empty bool
}

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.empty {
		return nil, nil
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.5}
	}
	return out, nil
}

type stubGenerator struct {
	answer string
	err    error
	prompt string
	calls  int
}

func (s *stubGenerator) GenerateAnswer(ctx context.Context, prompt string) (string, error) {
	s.calls++
	s.prompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func TestAsk(t *testing.T) {
	repo := &stubFileRepo{hits: []models.File{
		{
			ID:          "file-1",
			Name:        "q3-report.pdf",
			StoragePath: "data/finance/q3-report.pdf",
			Tags:        models.TagList{"finance", "q3"},
		},
		{
			ID:          "file-2",
			Name:        "forecast.xlsx",
			StoragePath: "data/finance/forecast.xlsx",
		},
	}}
	gen := &stubGenerator{answer: "The Q3 report covers revenue."}
	svc := NewService(repo, &stubEmbedder{}, gen, "data", 5, testLogger())

	answer, err := svc.Ask(context.Background(), "what does the Q3 report cover?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if answer.Answer != "The Q3 report covers revenue." {
		t.Errorf("Answer = %q", answer.Answer)
	}
	if len(answer.Sources) != 2 {
		t.Fatalf("sources = %d, want 2", len(answer.Sources))
	}
	if answer.Sources[0].Path != "finance/q3-report.pdf" {
		t.Errorf("source path = %q, want root stripped", answer.Sources[0].Path)
	}
	if answer.Sources[0].Tags != "finance, q3" {
		t.Errorf("source tags = %q", answer.Sources[0].Tags)
	}

	// The prompt must list the retrieved files and end with the question.
	if !strings.Contains(gen.prompt, "q3-report.pdf") || !strings.Contains(gen.prompt, "forecast.xlsx") {
		t.Errorf("prompt missing documents: %q", gen.prompt)
	}
	if !strings.HasSuffix(gen.prompt, "what does the Q3 report cover?") {
		t.Errorf("prompt does not end with the question: %q", gen.prompt)
	}
}

// With nothing retrievable the generator is never called.
func TestAskNoDocuments(t *testing.T) {
	gen := &stubGenerator{answer: "should not be used"}
	svc := NewService(&stubFileRepo{}, &stubEmbedder{}, gen, "data", 5, testLogger())

	answer, err := svc.Ask(context.Background(), "anything?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if gen.calls != 0 {
		t.Errorf("generator calls = %d, want 0", gen.calls)
	}
	if answer.Answer == "" || len(answer.Sources) != 0 {
		t.Errorf("unexpected answer: %+v", answer)
	}
}

func TestAskEmptyQuestion(t *testing.T) {
	svc := NewService(&stubFileRepo{}, &stubEmbedder{}, &stubGenerator{}, "data", 5, testLogger())

	for _, q := range []string{"", "   "} {
		_, err := svc.Ask(context.Background(), q)
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("Ask(%q) error = %v, want ErrValidation", q, err)
		}
	}
}

func TestAskEmbedderFailure(t *testing.T) {
	svc := NewService(&stubFileRepo{}, &stubEmbedder{err: fmt.Errorf("provider down")}, &stubGenerator{}, "data", 5, testLogger())

	if _, err := svc.Ask(context.Background(), "anything?"); err == nil {
		t.Fatal("expected error when embedding fails")
	}
}

// A provider that reports success but returns no vectors must still yield a
// well-formed error, not a wrapped nil.
func TestAskEmbedderReturnsNoVectors(t *testing.T) {
	svc := NewService(&stubFileRepo{}, &stubEmbedder{empty: true}, &stubGenerator{}, "data", 5, testLogger())

	_, err := svc.Ask(context.Background(), "anything?")
	if err == nil {
		t.Fatal("expected error when embedding returns no vectors")
	}
	if strings.Contains(err.Error(), "%!w") {
		t.Errorf("malformed error message: %q", err)
	}
}

func TestAskGeneratorFailure(t *testing.T) {
	repo := &stubFileRepo{hits: []models.File{{ID: "file-1", Name: "a.txt", StoragePath: "data/a.txt"}}}
	gen := &stubGenerator{err: fmt.Errorf("provider down")}
	svc := NewService(repo, &stubEmbedder{}, gen, "data", 5, testLogger())

	if _, err := svc.Ask(context.Background(), "anything?"); err == nil {
		t.Fatal("expected error when generation fails")
	}
}
