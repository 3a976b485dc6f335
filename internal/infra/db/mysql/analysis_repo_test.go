package mysql

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	mysqlmodule "github.com/testcontainers/testcontainers-go/modules/mysql"

	"github.com/bryanwahyu/bloodtest-analyzer/internal/domain/analysis"
)

func setupRepo(t *testing.T) *AnalysisRepository {
	t.Helper()
	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("SKIP_INTEGRATION=true, skipping MySQL integration tests")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := mysqlmodule.Run(ctx,
		"mysql:8.0",
		mysqlmodule.WithDatabase("bloodtest_test"),
		mysqlmodule.WithUsername("test"),
		mysqlmodule.WithPassword("test"),
	)
	if err != nil {
		t.Skipf("skipping: could not start MySQL container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "parseTime=true", "loc=UTC")
	require.NoError(t, err)

	db, err := Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAnalysisRepository(db)
}

func TestAnalysisRepository(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)
	user := "bob"

	require.NoError(t, repo.Save(ctx, &analysis.Record{ID: "1", FileName: "old.pdf", Query: "q1", Result: "{}", CreatedAt: base}))
	require.NoError(t, repo.Save(ctx, &analysis.Record{ID: "2", FileName: "new.pdf", Query: "q2", Result: "{}", CreatedAt: base.Add(time.Minute), UserID: &user}))

	got, err := repo.History(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new.pdf", got[0].FileName)
	require.NotNil(t, got[0].UserID)
	assert.Equal(t, "bob", *got[0].UserID)
	assert.Nil(t, got[1].UserID)

	assert.Error(t, repo.Save(ctx, &analysis.Record{ID: "2", FileName: "again.pdf", Query: "q3", Result: "{}", CreatedAt: base}))
	got, err = repo.History(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new.pdf", got[0].FileName)
}
