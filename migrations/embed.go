// Package migrations embeds the schema migrations for each supported
// database driver. Files live under a directory named after the driver.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite3/*.sql
var FS embed.FS
