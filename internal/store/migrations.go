package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create task cache",
		SQL: `
			CREATE TABLE tasks (
				id          TEXT PRIMARY KEY,
				user_id     TEXT NOT NULL DEFAULT '',
				title       TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				completed   INTEGER NOT NULL DEFAULT 0,
				created_at  TEXT NOT NULL,
				updated_at  TEXT NOT NULL
			);

			CREATE INDEX idx_tasks_completed ON tasks (completed);

			CREATE TABLE cache_meta (
				key   TEXT PRIMARY KEY,
				value TEXT NOT NULL
			);
		`,
	},
}
