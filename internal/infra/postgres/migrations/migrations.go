// Package migrations holds the Postgres schema for results and accounts.
package migrations

import "github.com/uptrace/bun/migrate"

var Migrations = migrate.NewMigrations()
