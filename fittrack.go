// Package fittrack embeds the database migrations shipped with the binary.
package fittrack

import "embed"

// Migrations holds migrations/postgres and migrations/sqlite.
//
//go:embed migrations
var Migrations embed.FS
