package database

// schemaStatements bootstrap the database. Kept as idempotent DDL instead
// of numbered migration files; the schema is small enough that a single
// authoritative definition is easier to audit.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            SERIAL PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name          TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS leads (
		id             SERIAL PRIMARY KEY,
		name           TEXT NOT NULL,
		email          TEXT NOT NULL DEFAULT '',
		phone          TEXT NOT NULL DEFAULT '',
		company        TEXT NOT NULL DEFAULT '',
		address        TEXT NOT NULL DEFAULT '',
		status         TEXT NOT NULL DEFAULT 'CONTACTED',
		owner_id       INTEGER REFERENCES users(id) ON DELETE SET NULL,
		priority_score INTEGER NOT NULL DEFAULT 0,
		scored_at      TIMESTAMPTZ,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS lead_notes (
		id         TEXT PRIMARY KEY,
		lead_id    INTEGER NOT NULL REFERENCES leads(id) ON DELETE CASCADE,
		user_id    INTEGER REFERENCES users(id) ON DELETE SET NULL,
		note_type  TEXT NOT NULL DEFAULT 'note',
		body       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_priority_score ON leads(priority_score DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_lead_notes_lead_id ON lead_notes(lead_id)`,
	`CREATE INDEX IF NOT EXISTS idx_lead_notes_created_at ON lead_notes(created_at)`,
}
