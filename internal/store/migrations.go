package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "profiles: registered users",
		SQL: `
CREATE TABLE profiles (
    id             TEXT PRIMARY KEY,
    username       TEXT NOT NULL,
    full_name      TEXT,
    avatar_url     TEXT,
    biography      TEXT,
    date_of_birth  TEXT,
    created_at     INTEGER NOT NULL,
    updated_at     INTEGER NOT NULL
);

CREATE UNIQUE INDEX idx_profiles_username ON profiles(username COLLATE NOCASE);
`,
	},
	{
		Version:     2,
		Description: "friendships: directed edges between users",
		SQL: `
CREATE TABLE friendships (
    id             TEXT PRIMARY KEY,
    requester_id   TEXT NOT NULL,
    receiver_id    TEXT NOT NULL,
    status         TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'blocked')),
    created_at     INTEGER NOT NULL,
    updated_at     INTEGER NOT NULL,

    UNIQUE (requester_id, receiver_id),
    CHECK (requester_id <> receiver_id),
    FOREIGN KEY (requester_id) REFERENCES profiles(id) ON DELETE CASCADE,
    FOREIGN KEY (receiver_id)  REFERENCES profiles(id) ON DELETE CASCADE
);

CREATE INDEX idx_friendships_receiver ON friendships(receiver_id);
`,
	},
	{
		Version:     3,
		Description: "memories and periods",
		SQL: `
CREATE TABLE memories (
    id             TEXT PRIMARY KEY,
    user_id        TEXT NOT NULL,
    title          TEXT NOT NULL,
    description    TEXT,
    date           TEXT NOT NULL,
    date_precision TEXT NOT NULL DEFAULT 'complete' CHECK (date_precision IN ('today', 'complete', 'month_year', 'year_only')),
    category       TEXT NOT NULL DEFAULT 'other' CHECK (category IN ('travel', 'education', 'family', 'work', 'personal', 'milestone', 'other')),
    location       TEXT,
    media_urls     TEXT NOT NULL DEFAULT '[]',
    visibility     TEXT NOT NULL DEFAULT 'private' CHECK (visibility IN ('private', 'friends', 'lists', 'public')),
    created_at     INTEGER NOT NULL,
    updated_at     INTEGER NOT NULL,

    FOREIGN KEY (user_id) REFERENCES profiles(id) ON DELETE CASCADE
);

CREATE INDEX idx_memories_user_date ON memories(user_id, date DESC);

CREATE TABLE periods (
    id             TEXT PRIMARY KEY,
    user_id        TEXT NOT NULL,
    title          TEXT NOT NULL,
    description    TEXT,
    type           TEXT NOT NULL DEFAULT 'other' CHECK (type IN ('residence', 'work', 'education', 'relationship', 'travel', 'project', 'other')),
    start_date     TEXT NOT NULL,
    end_date       TEXT,
    location       TEXT,
    visibility     TEXT NOT NULL DEFAULT 'private' CHECK (visibility IN ('private', 'friends', 'lists', 'public')),
    created_at     INTEGER NOT NULL,
    updated_at     INTEGER NOT NULL,

    FOREIGN KEY (user_id) REFERENCES profiles(id) ON DELETE CASCADE
);

CREATE INDEX idx_periods_user_start ON periods(user_id, start_date DESC);
`,
	},
	{
		Version:     4,
		Description: "likes and comments",
		SQL: `
CREATE TABLE likes (
    user_id        TEXT NOT NULL,
    memory_id      TEXT NOT NULL,
    created_at     INTEGER NOT NULL,

    PRIMARY KEY (user_id, memory_id),
    FOREIGN KEY (user_id)   REFERENCES profiles(id) ON DELETE CASCADE,
    FOREIGN KEY (memory_id) REFERENCES memories(id) ON DELETE CASCADE
);

CREATE INDEX idx_likes_memory ON likes(memory_id);

CREATE TABLE comments (
    id             TEXT PRIMARY KEY,
    seq            INTEGER NOT NULL,
    user_id        TEXT NOT NULL,
    memory_id      TEXT NOT NULL,
    content        TEXT NOT NULL CHECK (length(content) > 0),
    created_at     INTEGER NOT NULL,

    FOREIGN KEY (user_id)   REFERENCES profiles(id) ON DELETE CASCADE,
    FOREIGN KEY (memory_id) REFERENCES memories(id) ON DELETE CASCADE
);

CREATE INDEX idx_comments_memory ON comments(memory_id, created_at, seq);
`,
	},
	{
		Version:     5,
		Description: "user lists and list-scoped visibility",
		SQL: `
CREATE TABLE user_lists (
    id             TEXT PRIMARY KEY,
    owner_id       TEXT NOT NULL,
    name           TEXT NOT NULL,
    description    TEXT,
    created_at     INTEGER NOT NULL,

    FOREIGN KEY (owner_id) REFERENCES profiles(id) ON DELETE CASCADE
);

CREATE TABLE user_list_members (
    list_id        TEXT NOT NULL,
    member_id      TEXT NOT NULL,

    PRIMARY KEY (list_id, member_id),
    FOREIGN KEY (list_id)   REFERENCES user_lists(id) ON DELETE CASCADE,
    FOREIGN KEY (member_id) REFERENCES profiles(id) ON DELETE CASCADE
);

CREATE INDEX idx_list_members_member ON user_list_members(member_id);

CREATE TABLE memory_list_visibility (
    list_id        TEXT NOT NULL,
    memory_id      TEXT NOT NULL,

    PRIMARY KEY (list_id, memory_id),
    FOREIGN KEY (list_id)   REFERENCES user_lists(id) ON DELETE CASCADE,
    FOREIGN KEY (memory_id) REFERENCES memories(id) ON DELETE CASCADE
);

CREATE TABLE period_list_visibility (
    list_id        TEXT NOT NULL,
    period_id      TEXT NOT NULL,

    PRIMARY KEY (list_id, period_id),
    FOREIGN KEY (list_id)   REFERENCES user_lists(id) ON DELETE CASCADE,
    FOREIGN KEY (period_id) REFERENCES periods(id) ON DELETE CASCADE
);
`,
	},
	{
		Version:     6,
		Description: "people and memory tags",
		SQL: `
CREATE TABLE people (
    id                 TEXT PRIMARY KEY,
    creator_id         TEXT NOT NULL,
    full_name          TEXT NOT NULL,
    email              TEXT,
    relationship       TEXT,
    registered_user_id TEXT,
    invited_at         INTEGER,
    created_at         INTEGER NOT NULL,

    FOREIGN KEY (creator_id)         REFERENCES profiles(id) ON DELETE CASCADE,
    FOREIGN KEY (registered_user_id) REFERENCES profiles(id) ON DELETE SET NULL
);

CREATE TABLE memory_user_tags (
    memory_id      TEXT NOT NULL,
    person_id      TEXT NOT NULL,

    PRIMARY KEY (memory_id, person_id),
    FOREIGN KEY (memory_id) REFERENCES memories(id) ON DELETE CASCADE,
    FOREIGN KEY (person_id) REFERENCES people(id) ON DELETE CASCADE
);
`,
	},
}

func (db *DB) migrate() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
