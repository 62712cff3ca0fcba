package awardmigrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the award module schema.
var Migrations = migrate.NewMigrations()

func init() {
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
}
