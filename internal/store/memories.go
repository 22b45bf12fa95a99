package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lazypower/memoria/internal/journal"
)

const memoryColumns = `m.id, m.user_id, m.title, m.description, m.date, m.date_precision, m.category,
	m.location, m.media_urls, m.visibility, m.created_at, m.updated_at`

func scanMemory(row rowScanner, extra ...any) (*journal.MemoryWithAuthor, error) {
	var (
		m                    journal.MemoryWithAuthor
		desc, loc            sql.NullString
		precision, cat, vis  string
		media                string
		createdAt, updatedAt int64
	)
	dest := []any{&m.ID, &m.UserID, &m.Title, &desc, &m.Date, &precision, &cat, &loc, &media, &vis, &createdAt, &updatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	m.Description = str(desc)
	m.Location = str(loc)
	m.DatePrecision = journal.DatePrecision(precision)
	m.Category = journal.Category(cat)
	m.Visibility = journal.Visibility(vis)
	m.CreatedAt = ms(createdAt)
	m.UpdatedAt = ms(updatedAt)
	if err := json.Unmarshal([]byte(media), &m.MediaURLs); err != nil {
		return nil, fmt.Errorf("decode media_urls: %w", err)
	}
	return &m, nil
}

// CreateMemory validates and inserts a memory owned by m.UserID, sharing it
// with listIDs. Nothing is stored if any list is unknown or not the owner's.
func (db *DB) CreateMemory(m journal.Memory, listIDs ...string) (*journal.Memory, error) {
	if err := journal.ValidateMemory(m); err != nil {
		return nil, fmt.Errorf("create memory: %v: %w", err, ErrInvalid)
	}
	if m.MediaURLs == nil {
		m.MediaURLs = []string{}
	}
	media, err := json.Marshal(m.MediaURLs)
	if err != nil {
		return nil, fmt.Errorf("encode media_urls: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	m.ID = newID()
	ts := now()
	_, err = tx.Exec(`
		INSERT INTO memories (id, user_id, title, description, date, date_precision, category, location, media_urls, visibility, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.UserID, m.Title, nullable(m.Description), m.Date, string(m.DatePrecision), string(m.Category),
		nullable(m.Location), string(media), string(m.Visibility), ts, ts)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("create memory: unknown user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("create memory: %w", err)
	}
	if err := linkLists(tx, "memory_list_visibility", "memory_id", m.ID, m.UserID, listIDs); err != nil {
		return nil, fmt.Errorf("create memory: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create memory: %w", err)
	}
	m.CreatedAt = ms(ts)
	m.UpdatedAt = ms(ts)
	return &m, nil
}

// GetMemory returns a memory with its author if viewerID may see it.
// Returns nil when the memory does not exist or is hidden from the viewer.
func (db *DB) GetMemory(viewerID, memoryID string) (*journal.MemoryWithAuthor, error) {
	clause, args := visibleTo("m", "memory_list_visibility", "memory_id", viewerID)
	row := db.QueryRow(`
		SELECT `+memoryColumns+`, `+authorColumns+`
		FROM memories m JOIN profiles p ON p.id = m.user_id
		WHERE m.id = ? AND `+clause,
		append([]any{memoryID}, args...)...,
	)

	var a authorRow
	m, err := scanMemory(row, a.dest()...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get memory: %w", err)
	}
	m.Author = a.profile()
	return m, nil
}

// MemoryFilter narrows VisibleMemories by date (inclusive, YYYY-MM-DD).
type MemoryFilter struct {
	From string
	To   string
}

// VisibleMemories returns ownerID's memories that viewerID may read, newest
// date first, each with its author.
func (db *DB) VisibleMemories(viewerID, ownerID string, f MemoryFilter) ([]journal.MemoryWithAuthor, error) {
	clause, args := visibleTo("m", "memory_list_visibility", "memory_id", viewerID)
	query := `
		SELECT ` + memoryColumns + `, ` + authorColumns + `
		FROM memories m JOIN profiles p ON p.id = m.user_id
		WHERE m.user_id = ? AND ` + clause
	params := append([]any{ownerID}, args...)
	if f.From != "" {
		query += ` AND m.date >= ?`
		params = append(params, f.From)
	}
	if f.To != "" {
		query += ` AND m.date <= ?`
		params = append(params, f.To)
	}
	query += ` ORDER BY m.date DESC, m.created_at DESC`

	rows, err := db.Query(query, params...)
	if err != nil {
		return nil, fmt.Errorf("visible memories: %w", err)
	}
	defer rows.Close()

	var out []journal.MemoryWithAuthor
	for rows.Next() {
		var a authorRow
		m, err := scanMemory(rows, a.dest()...)
		if err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		m.Author = a.profile()
		out = append(out, *m)
	}
	return out, rows.Err()
}

// CountVisibleMemories counts ownerID's memories that viewerID may read.
func (db *DB) CountVisibleMemories(viewerID, ownerID string) (int, error) {
	clause, args := visibleTo("m", "memory_list_visibility", "memory_id", viewerID)
	var n int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM memories m WHERE m.user_id = ? AND `+clause,
		append([]any{ownerID}, args...)...,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count visible memories: %w", err)
	}
	return n, nil
}

// SetMemoryLists shares a memory with the given lists of its owner,
// replacing any previous set.
func (db *DB) SetMemoryLists(ownerID, memoryID string, listIDs []string) error {
	if err := db.requireOwner("memories", memoryID, ownerID); err != nil {
		return err
	}
	if err := db.setListVisibility("memory_list_visibility", "memory_id", memoryID, ownerID, listIDs); err != nil {
		return fmt.Errorf("set memory lists: %w", err)
	}
	return nil
}

// requireOwner checks that the row id in table belongs to userID.
func (db *DB) requireOwner(table, id, userID string) error {
	var owner string
	err := db.QueryRow(fmt.Sprintf(`SELECT user_id FROM %s WHERE id = ?`, table), id).Scan(&owner)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%s %s: %w", table, id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("lookup %s: %w", table, err)
	}
	if owner != userID {
		return fmt.Errorf("%s %s: %w", table, id, ErrForbidden)
	}
	return nil
}
