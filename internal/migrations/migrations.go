// Package migrations embeds the schema migration files so binaries can
// migrate on startup without shipping loose SQL alongside them.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
