// Package migrations embeds the goose SQL migrations, one directory per
// dialect.
package migrations

import "embed"

// Dialect directories inside FS.
const (
	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
