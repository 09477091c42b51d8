// Package migrations embeds the SQL data migrations applied by goose after
// the schema is in place.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
