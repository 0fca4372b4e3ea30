// Package migrations embeds the SQL migration files into the binary.
//
// Each supported driver has its own directory (sqlite3, postgres, mysql)
// holding the same migration versions in that backend's dialect.
package migrations

import (
	"embed"

	"github.com/nerrad567/radioloan-core/internal/infrastructure/database"
)

//go:embed sqlite3/*.sql postgres/*.sql mysql/*.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
