package db

import "embed"

// EmbedMigrations carries the goose migration files into the binary so the
// server can migrate itself at startup.
//
//go:embed migrations/*.sql
var EmbedMigrations embed.FS
