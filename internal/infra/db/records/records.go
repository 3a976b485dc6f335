// Package records holds the SQL plumbing the dialect repositories share.
package records

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/bryanwahyu/bloodtest-analyzer/internal/domain/analysis"
)

// Columns in the order Scan expects them.
const Columns = "id, file_name, query, result, created_at, user_id"

// Prepare fills defaults before an insert.
func Prepare(r *analysis.Record) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.CreatedAt = r.CreatedAt.UTC()
}

// Page turns a limit of zero or less into "no limit".
func Page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = math.MaxInt32
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Scan reads rows selected with Columns.
func Scan(rows *sql.Rows) ([]*analysis.Record, error) {
	defer rows.Close()

	out := []*analysis.Record{}
	for rows.Next() {
		var (
			rec  analysis.Record
			user sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.FileName, &rec.Query, &rec.Result, &rec.CreatedAt, &user); err != nil {
			return nil, err
		}
		if user.Valid {
			rec.UserID = &user.String
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// Migrate runs every *.sql file under dir in name order. Statements are split
// on ";" so drivers without multi-statement support can run them.
func Migrate(ctx context.Context, db *sql.DB, fsys embed.FS, dir string) error {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		body, err := fsys.ReadFile(dir + "/" + e.Name())
		if err != nil {
			return fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		for _, stmt := range strings.Split(string(body), ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("applying %s: %w", e.Name(), err)
			}
		}
	}
	return nil
}
