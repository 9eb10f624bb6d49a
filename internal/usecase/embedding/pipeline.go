package embedding

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/talentdex/internal/domain"
	"github.com/kailas-cloud/talentdex/internal/domain/candidate"
	"github.com/kailas-cloud/talentdex/internal/domain/searchdoc"
)

// Pipeline builds a candidate's search document, embeds it and persists
// the vector together with the search text it was built from.
type Pipeline struct {
	repo     candidateRepo
	embedder domain.Embedder
	logger   *zap.Logger
}

// NewPipeline creates the embed-and-persist pipeline.
func NewPipeline(repo candidateRepo, embedder domain.Embedder, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{repo: repo, embedder: embedder, logger: logger}
}

// EmbedCandidate re-embeds one candidate. Non-blank extraText replaces the
// stored search text (truncated to domain.MaxSearchTextChars); blank keeps it.
// An empty document or an empty vector persists a null embedding.
func (p *Pipeline) EmbedCandidate(ctx context.Context, id, extraText string) error {
	c, err := p.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get candidate: %w", err)
	}

	searchText := c.SearchText
	if !domain.IsBlank(extraText) {
		searchText = domain.TruncateChars(extraText, domain.MaxSearchTextChars)
	}

	doc := searchdoc.Build(c, searchText)

	var vec []float32
	if !domain.IsBlank(doc) {
		res, err := p.embedder.Embed(ctx, doc)
		if err != nil {
			return fmt.Errorf("embed candidate: %w", err)
		}
		vec = res.Embedding
	}

	if _, err := p.repo.Update(ctx, id, candidate.EmbeddingPatch(vec, searchText)); err != nil {
		return fmt.Errorf("persist embedding: %w", err)
	}

	p.logger.Debug("Candidate embedded",
		zap.String("candidate_id", id),
		zap.Int("dimensions", len(vec)),
		zap.Int("search_text_chars", len([]rune(searchText))),
	)
	return nil
}
