// Package db embeds the SQL migrations.
package db

import "embed"

// Migrations holds the DDL files under migrations/, applied in lexical order.
//
//go:embed migrations/*.sql
var Migrations embed.FS
