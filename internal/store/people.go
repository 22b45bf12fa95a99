package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lazypower/memoria/internal/journal"
)

// CreatePerson records someone creatorID can tag in memories. If the email
// matches no one yet, RegisteredUserID stays empty.
func (db *DB) CreatePerson(p journal.Person) (*journal.Person, error) {
	p.FullName = strings.TrimSpace(p.FullName)
	if p.FullName == "" {
		return nil, fmt.Errorf("create person: full name required: %w", ErrInvalid)
	}

	p.ID = newID()
	_, err := db.Exec(`
		INSERT INTO people (id, creator_id, full_name, email, relationship, registered_user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.CreatorID, p.FullName, nullable(p.Email), nullable(p.Relationship), nullable(p.RegisteredUserID), now())
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("create person: unknown user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("create person: %w", err)
	}
	return &p, nil
}

// TagPeople replaces the people tagged in a memory. Only the memory's
// owner may tag, and only people they created.
func (db *DB) TagPeople(ownerID, memoryID string, personIDs []string) error {
	if err := db.requireOwner("memories", memoryID, ownerID); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM memory_user_tags WHERE memory_id = ?`, memoryID); err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}
	for _, personID := range personIDs {
		var creator string
		err := tx.QueryRow(`SELECT creator_id FROM people WHERE id = ?`, personID).Scan(&creator)
		if err == sql.ErrNoRows {
			return fmt.Errorf("person %s: %w", personID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("lookup person: %w", err)
		}
		if creator != ownerID {
			return fmt.Errorf("person %s: %w", personID, ErrForbidden)
		}
		if _, err := tx.Exec(`
			INSERT INTO memory_user_tags (memory_id, person_id) VALUES (?, ?) ON CONFLICT DO NOTHING
		`, memoryID, personID); err != nil {
			return fmt.Errorf("tag person: %w", err)
		}
	}
	return tx.Commit()
}

// TaggedPeople returns the people tagged in a memory, by name.
func (db *DB) TaggedPeople(memoryID string) ([]journal.Person, error) {
	rows, err := db.Query(`
		SELECT pe.id, pe.creator_id, pe.full_name, pe.email, pe.relationship, pe.registered_user_id, pe.invited_at
		FROM memory_user_tags t JOIN people pe ON pe.id = t.person_id
		WHERE t.memory_id = ?
		ORDER BY pe.full_name
	`, memoryID)
	if err != nil {
		return nil, fmt.Errorf("tagged people: %w", err)
	}
	defer rows.Close()

	var out []journal.Person
	for rows.Next() {
		var (
			p                      journal.Person
			email, rel, registered sql.NullString
			invited                sql.NullInt64
		)
		if err := rows.Scan(&p.ID, &p.CreatorID, &p.FullName, &email, &rel, &registered, &invited); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		p.Email = str(email)
		p.Relationship = str(rel)
		p.RegisteredUserID = str(registered)
		if invited.Valid {
			t := ms(invited.Int64)
			p.InvitedAt = &t
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
