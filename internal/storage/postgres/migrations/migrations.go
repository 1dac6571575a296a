package migrations

import "embed"

//go:embed auth/*.sql finance/*.sql
var FS embed.FS
