package migrations

import "embed"

//go:embed mysql/*.sql sqlite/*.sql
var FS embed.FS
