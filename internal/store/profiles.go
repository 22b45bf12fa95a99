package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lazypower/memoria/internal/journal"
)

const profileColumns = `id, username, full_name, avatar_url, biography, date_of_birth, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*journal.Profile, error) {
	var (
		p                            journal.Profile
		fullName, avatar, bio, birth sql.NullString
		createdAt, updatedAt         int64
	)
	if err := row.Scan(&p.ID, &p.Username, &fullName, &avatar, &bio, &birth, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.FullName = str(fullName)
	p.AvatarURL = str(avatar)
	p.Biography = str(bio)
	p.DateOfBirth = str(birth)
	p.CreatedAt = ms(createdAt)
	p.UpdatedAt = ms(updatedAt)
	return &p, nil
}

// CreateProfile inserts a profile. An empty ID gets a fresh UUID.
// Usernames are unique case-insensitively.
func (db *DB) CreateProfile(p journal.Profile) (*journal.Profile, error) {
	p.Username = strings.TrimSpace(p.Username)
	if p.Username == "" {
		return nil, fmt.Errorf("create profile: username required: %w", ErrInvalid)
	}
	if p.ID == "" {
		p.ID = newID()
	}

	ts := now()
	_, err := db.Exec(`
		INSERT INTO profiles (id, username, full_name, avatar_url, biography, date_of_birth, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Username, nullable(p.FullName), nullable(p.AvatarURL), nullable(p.Biography), nullable(p.DateOfBirth), ts, ts)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create profile %s: %w", p.Username, ErrConflict)
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}
	p.CreatedAt = ms(ts)
	p.UpdatedAt = ms(ts)
	return &p, nil
}

// GetProfile returns the profile with the given id, or nil if none exists.
func (db *DB) GetProfile(id string) (*journal.Profile, error) {
	p, err := scanProfile(db.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// GetProfileByUsername looks a profile up by username, ignoring case.
// Returns nil if none exists.
func (db *DB) GetProfileByUsername(username string) (*journal.Profile, error) {
	p, err := scanProfile(db.QueryRow(
		`SELECT `+profileColumns+` FROM profiles WHERE username = ? COLLATE NOCASE`,
		strings.TrimSpace(username),
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile by username: %w", err)
	}
	return p, nil
}

// UpdateProfile overwrites the editable fields of an existing profile.
func (db *DB) UpdateProfile(p journal.Profile) (*journal.Profile, error) {
	ts := now()
	result, err := db.Exec(`
		UPDATE profiles
		SET full_name = ?, avatar_url = ?, biography = ?, date_of_birth = ?, updated_at = ?
		WHERE id = ?
	`, nullable(p.FullName), nullable(p.AvatarURL), nullable(p.Biography), nullable(p.DateOfBirth), ts, p.ID)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, fmt.Errorf("update profile %s: %w", p.ID, ErrNotFound)
	}
	return db.GetProfile(p.ID)
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "PRIMARY KEY")
}

func isForeignKeyViolation(err error) bool {
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
