package analysis

import "context"

// Repository port for persisting and listing records. Records are never
// updated or deleted.
type Repository interface {
	Save(ctx context.Context, r *Record) error
	// History lists records newest first. limit <= 0 returns all of them.
	History(ctx context.Context, limit, offset int) ([]*Record, error)
}
