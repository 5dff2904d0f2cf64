package migrations

import _ "embed"

//go:embed sql/0003_create_user_stats.sql
var createUserStatsSQL string

func init() {
	Migrations.MustRegister(
		execSQL(createUserStatsSQL),
		execSQL(`DROP TABLE IF EXISTS user_stats`),
	)
}
