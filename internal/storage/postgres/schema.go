package postgres

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	username      TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	api_key       TEXT NOT NULL UNIQUE,
	team          TEXT NOT NULL,
	points        BIGINT NOT NULL DEFAULT 0 CHECK (points >= 0),
	create_time   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS quiz_sessions (
	username    TEXT NOT NULL REFERENCES profiles (username),
	quiz_name   TEXT NOT NULL,
	pos         INT NOT NULL,
	questions   JSONB NOT NULL,
	idx         INT NOT NULL DEFAULT 0 CHECK (idx >= 0),
	create_time TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (username, quiz_name)
);
`
