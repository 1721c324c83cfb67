// Package migrations embeds the goose SQL migrations of the spell catalog.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
