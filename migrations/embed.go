// Package migrations embeds the schema so every binary and test applies the same SQL.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
