// Package migrations embeds the SQL migration files so the goose
// programmatic API can run them in tests and at server startup.
package migrations

import "embed"

// FS holds every *.sql migration embedded at compile time. Pass it to a
// goose provider instead of depending on a filesystem path at runtime.
//
//go:embed *.sql
var FS embed.FS
