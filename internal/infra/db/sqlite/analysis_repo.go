package sqlite

import (
	"context"
	"database/sql"

	"github.com/bryanwahyu/bloodtest-analyzer/internal/domain/analysis"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/infra/db/records"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

func (r *AnalysisRepository) Save(ctx context.Context, a *analysis.Record) error {
	const q = `
INSERT INTO analysis_results
  (id, file_name, query, result, created_at, user_id)
VALUES (?,?,?,?,?,?);
`
	records.Prepare(a)
	_, err := r.db.ExecContext(ctx, q, a.ID, a.FileName, a.Query, a.Result, a.CreatedAt, a.UserID)
	return err
}

func (r *AnalysisRepository) History(ctx context.Context, limit, offset int) ([]*analysis.Record, error) {
	const q = `
SELECT ` + records.Columns + `
FROM analysis_results
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;
`
	limit, offset = records.Page(limit, offset)
	rows, err := r.db.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	return records.Scan(rows)
}
