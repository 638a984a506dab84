package migrations

import "embed"

// FS contains embedded SQLite migrations for the action log.
//
//go:embed *.sql
var FS embed.FS
