// Package migrations embeds the SQL migrations for the repository mirror.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
