package repository

// Schema keeps tasks.project_id as a plain column: deleting a project leaves
// its tasks pointing at the old id.

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS projects (
        id           BIGSERIAL PRIMARY KEY,
        user_id      BIGINT      NOT NULL,
        name         TEXT        NOT NULL,
        type         TEXT        NOT NULL,
        status       TEXT        NOT NULL,
        deadline     TIMESTAMPTZ,
        cost_cents   BIGINT,
        created_at   TIMESTAMPTZ NOT NULL,
        completed_at TIMESTAMPTZ
    )`,
	`CREATE INDEX IF NOT EXISTS idx_projects_user ON projects (user_id, status)`,
	`CREATE TABLE IF NOT EXISTS tasks (
        id           BIGSERIAL PRIMARY KEY,
        user_id      BIGINT      NOT NULL,
        project_id   BIGINT,
        title        TEXT        NOT NULL,
        description  TEXT,
        is_completed BOOLEAN     NOT NULL DEFAULT FALSE,
        deadline     TIMESTAMPTZ,
        created_at   TIMESTAMPTZ NOT NULL,
        completed_at TIMESTAMPTZ
    )`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks (user_id, is_completed)`,
	`CREATE TABLE IF NOT EXISTS expenses (
        id           BIGSERIAL PRIMARY KEY,
        user_id      BIGINT      NOT NULL,
        amount_cents BIGINT      NOT NULL,
        date         TIMESTAMPTZ NOT NULL,
        comment      TEXT,
        created_at   TIMESTAMPTZ NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_user_date ON expenses (user_id, date)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS projects (
        id           INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id      INTEGER NOT NULL,
        name         TEXT    NOT NULL,
        type         TEXT    NOT NULL,
        status       TEXT    NOT NULL,
        deadline     TEXT,
        cost_cents   INTEGER,
        created_at   TEXT    NOT NULL,
        completed_at TEXT
    )`,
	`CREATE INDEX IF NOT EXISTS idx_projects_user ON projects (user_id, status)`,
	`CREATE TABLE IF NOT EXISTS tasks (
        id           INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id      INTEGER NOT NULL,
        project_id   INTEGER,
        title        TEXT    NOT NULL,
        description  TEXT,
        is_completed BOOLEAN NOT NULL DEFAULT 0,
        deadline     TEXT,
        created_at   TEXT    NOT NULL,
        completed_at TEXT
    )`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks (user_id, is_completed)`,
	`CREATE TABLE IF NOT EXISTS expenses (
        id           INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id      INTEGER NOT NULL,
        amount_cents INTEGER NOT NULL,
        date         TEXT    NOT NULL,
        comment      TEXT,
        created_at   TEXT    NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_user_date ON expenses (user_id, date)`,
}
