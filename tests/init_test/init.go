package init_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"stockfolio/src/database"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	TestDB *pgxpool.Pool
)

// SetupTestDB starts a throwaway Postgres container, applies the goose
// migrations and returns a shared connection pool. The container lives for
// the remainder of the test process; tests isolate themselves by using
// distinct user ids and CleanupTestData.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if TestDB != nil {
		return TestDB
	}

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("stockfolio_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	applyMigrations(t, dsn)

	pool, err := database.NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}

	TestDB = pool
	return TestDB
}

func applyMigrations(t *testing.T, dsn string) {
	t.Helper()

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("Failed to open database for migrations: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		t.Fatalf("Failed to set goose dialect: %v", err)
	}
	if err := goose.Up(db, filepath.Join(findProjectRoot(t), "migrations")); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}
}

// findProjectRoot walks up from the working directory to the go.mod.
func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// CleanupTestData removes every row owned by the given user.
func CleanupTestData(t *testing.T, db *pgxpool.Pool, userID int) {
	t.Helper()

	ctx := context.Background()
	for _, table := range []string{"transaction_records", "wishlist_entries", "deleted_holdings", "holdings"} {
		if _, err := db.Exec(ctx, `DELETE FROM `+table+` WHERE user_id = $1`, userID); err != nil {
			t.Logf("Failed to clean up %s: %v", table, err)
		}
	}
}
