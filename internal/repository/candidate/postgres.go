package candidate

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/talentdex/internal/db"
)

type postgresBackend struct {
	store db.DocumentStore
}

// NewPostgres creates a repository over a JSONB document table.
func NewPostgres(s db.DocumentStore, logger *zap.Logger) *Repo {
	return newRepo(&postgresBackend{store: s}, logger)
}

//nolint:wrapcheck // all errors are wrapped by Repo
func (b *postgresBackend) load(ctx context.Context, id string) ([]byte, error) {
	return b.store.GetDoc(ctx, id)
}

//nolint:wrapcheck
func (b *postgresBackend) loadMany(ctx context.Context, ids []string) ([][]byte, error) {
	return b.store.GetDocs(ctx, ids)
}

//nolint:wrapcheck
func (b *postgresBackend) insert(ctx context.Context, id string, doc []byte) (bool, error) {
	return b.store.InsertDoc(ctx, id, doc)
}

//nolint:wrapcheck
func (b *postgresBackend) merge(ctx context.Context, id string, partial []byte) error {
	return b.store.MergeDoc(ctx, id, partial)
}

//nolint:wrapcheck
func (b *postgresBackend) remove(ctx context.Context, id string) error {
	return b.store.DeleteDoc(ctx, id)
}

//nolint:wrapcheck
func (b *postgresBackend) ids(ctx context.Context) ([]string, error) {
	return b.store.ListIDs(ctx)
}
