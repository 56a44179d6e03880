// Package db embeds the SQL migrations so the binaries can apply them without
// a migrations directory on disk.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsPath is the directory of Migrations holding the .sql files.
const MigrationsPath = "migrations"
