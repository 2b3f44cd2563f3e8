// Package migrations embeds the goose SQL migrations of the service schema.
package migrations

import "embed"

// FS holds every *.sql migration.
//
//go:embed *.sql
var FS embed.FS
