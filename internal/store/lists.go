package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lazypower/memoria/internal/journal"
)

// CreateList creates an empty user list owned by ownerID.
func (db *DB) CreateList(ownerID, name, description string) (*journal.List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("create list: name required: %w", ErrInvalid)
	}

	l := journal.List{ID: newID(), OwnerID: ownerID, Name: name, Description: description}
	ts := now()
	_, err := db.Exec(`
		INSERT INTO user_lists (id, owner_id, name, description, created_at) VALUES (?, ?, ?, ?, ?)
	`, l.ID, ownerID, name, nullable(description), ts)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("create list: unknown owner: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("create list: %w", err)
	}
	l.CreatedAt = ms(ts)
	return &l, nil
}

// AddListMember adds memberID to a list. Only the list owner may add.
// Adding an existing member is a no-op.
func (db *DB) AddListMember(ownerID, listID, memberID string) error {
	var owner string
	err := db.QueryRow(`SELECT owner_id FROM user_lists WHERE id = ?`, listID).Scan(&owner)
	if err == sql.ErrNoRows {
		return fmt.Errorf("list %s: %w", listID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("lookup list: %w", err)
	}
	if owner != ownerID {
		return fmt.Errorf("list %s: %w", listID, ErrForbidden)
	}

	_, err = db.Exec(`
		INSERT INTO user_list_members (list_id, member_id) VALUES (?, ?)
		ON CONFLICT DO NOTHING
	`, listID, memberID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("add list member: unknown user: %w", ErrNotFound)
		}
		return fmt.Errorf("add list member: %w", err)
	}
	return nil
}

// ListsOf returns ownerID's lists with their member ids, by name.
func (db *DB) ListsOf(ownerID string) ([]journal.List, error) {
	rows, err := db.Query(`
		SELECT l.id, l.name, l.description, l.created_at, m.member_id
		FROM user_lists l LEFT JOIN user_list_members m ON m.list_id = l.id
		WHERE l.owner_id = ?
		ORDER BY l.name, l.id, m.member_id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("lists of: %w", err)
	}
	defer rows.Close()

	var out []journal.List
	for rows.Next() {
		var (
			id, name     string
			desc, member sql.NullString
			createdAt    int64
		)
		if err := rows.Scan(&id, &name, &desc, &createdAt, &member); err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		if len(out) == 0 || out[len(out)-1].ID != id {
			out = append(out, journal.List{
				ID:          id,
				OwnerID:     ownerID,
				Name:        name,
				Description: str(desc),
				CreatedAt:   ms(createdAt),
			})
		}
		if member.Valid {
			last := &out[len(out)-1]
			last.MemberIDs = append(last.MemberIDs, member.String)
		}
	}
	return out, rows.Err()
}
