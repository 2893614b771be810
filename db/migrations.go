package db

import "embed"

// Migrations holds the golang-migrate files for every supported dialect,
// one directory per dialect.
//
//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var Migrations embed.FS

const (
	SQLiteMigrations   = "migrations/sqlite"
	PostgresMigrations = "migrations/postgres"
)
