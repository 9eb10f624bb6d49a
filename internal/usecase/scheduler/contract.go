package scheduler

import "context"

// candidateEmbedder runs the embed-and-persist pipeline for one candidate.
type candidateEmbedder interface {
	EmbedCandidate(ctx context.Context, id, extraText string) error
}

// resumeFetcher downloads and extracts résumé text; "" on any failure.
type resumeFetcher interface {
	FetchResumeText(ctx context.Context, url string) string
}
