package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"condo-radar/internal/domain/entity"
	"condo-radar/internal/repository"

	"github.com/lib/pq"
)

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) repository.DocumentRepository {
	return &DocumentRepo{db: db}
}

// BulkInsert writes the batch in a single multi-row statement. Conflicts on
// link are absorbed by ON CONFLICT DO NOTHING, so the duplicate count is
// len(docs) minus the rows the database actually took.
func (repo *DocumentRepo) BulkInsert(ctx context.Context, source entity.Source, docs []*entity.Document, scrapedAt time.Time) (repository.BulkInsertResult, error) {
	if len(docs) == 0 {
		return repository.BulkInsertResult{}, nil
	}

	const columns = 9
	placeholders := make([]string, 0, len(docs))
	args := make([]any, 0, len(docs)*columns)
	for i, doc := range docs {
		base := i * columns
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9))

		meta, err := json.Marshal(doc.Metadata)
		if err != nil {
			return repository.BulkInsertResult{}, fmt.Errorf("BulkInsert: marshal metadata: %w", err)
		}
		args = append(args,
			doc.Title,
			nullString(doc.Body),
			nullString(doc.Link),
			doc.PublishedAt,
			string(source),
			pq.Array(doc.Tags),
			meta,
			scrapedAt,
			string(entity.StatusPending),
		)
	}

	// processed_at stays NULL until a downstream consumer claims the row.
	query := fmt.Sprintf(`
INSERT INTO documents (title, body, link, published_at, source, tags, metadata, scraped_at, processing_status)
VALUES %s
ON CONFLICT (link) DO NOTHING`, strings.Join(placeholders, ", "))

	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return repository.BulkInsertResult{}, fmt.Errorf("BulkInsert: %w: %w", repository.ErrStoreUnavailable, err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return repository.BulkInsertResult{}, fmt.Errorf("BulkInsert: RowsAffected: %w", err)
	}
	return repository.BulkInsertResult{
		Inserted:   inserted,
		Duplicated: int64(len(docs)) - inserted,
	}, nil
}

func (repo *DocumentRepo) Ping(ctx context.Context) error {
	if err := repo.db.PingContext(ctx); err != nil {
		return fmt.Errorf("Ping: %w: %w", repository.ErrStoreUnavailable, err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
