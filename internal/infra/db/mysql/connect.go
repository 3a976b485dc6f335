package mysql

import (
	"context"
	"database/sql"
	"embed"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/bryanwahyu/bloodtest-analyzer/internal/infra/db/records"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Connect opens the pool, pings it and applies the schema.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	// test ping
	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		db.Close()
		return nil, err
	}
	if err := records.Migrate(ctx, db, migrations, "migrations"); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
