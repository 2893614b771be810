package test

import (
	"context"
	"log"

	"todoapi/internal/adapter/database/sqlite"
)

// InitTestDB opens a private in-memory SQLite database with the schema
// migrated. The pool keeps a single connection, so the data lives until
// the returned DB is closed.
func InitTestDB() *sqlite.DB {
	db, err := sqlite.NewDB(context.Background(), sqlite.Config{
		DSN:           ":memory:",
		RunMigrations: true,
	})

	if err != nil {
		log.Fatal(err)
	}

	return db
}
