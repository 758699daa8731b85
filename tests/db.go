package testutil

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/storage/database"
)

// PrepareDB creates and migrates the test database and empties it once the test is done.
// Postgres tests only run with ENV=TEST; they are skipped otherwise.
func PrepareDB(t *testing.T) *sqlx.DB {
	conf := core.NewConfig()
	if !conf.TestMode || conf.Database.InMemory {
		t.Skip("postgres tests need ENV=TEST and a reachable database")
	}

	ctx := context.Background()
	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	if err = database.Migrate(db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}

	t.Cleanup(func() {
		if _, err := db.Exec("TRUNCATE member, track, announcement"); err != nil {
			t.Errorf("PrepareDB() cleanup failed: %v", err)
		}
		_ = db.Close()
	})
	return db
}
