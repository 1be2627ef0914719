// Package migrations embeds the PostgreSQL schema for the analysis history.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
