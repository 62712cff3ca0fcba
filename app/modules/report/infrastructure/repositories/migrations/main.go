package reportmigrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the report module schema.
var Migrations = migrate.NewMigrations()

func init() {
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
}
