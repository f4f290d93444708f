package migrations

import "embed"

// Migrations : схема users и token_blacklist в формате goose
//
//go:embed *.sql
var Migrations embed.FS
