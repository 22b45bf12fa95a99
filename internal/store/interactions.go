package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lazypower/memoria/internal/journal"
)

const authorColumns = `p.id, p.username, p.full_name, p.avatar_url, p.biography, p.date_of_birth, p.created_at, p.updated_at`

// authorRow receives the authorColumns of a joined profile.
type authorRow struct {
	id, username                 string
	fullName, avatar, bio, birth sql.NullString
	createdAt, updatedAt         int64
}

func (a *authorRow) dest() []any {
	return []any{&a.id, &a.username, &a.fullName, &a.avatar, &a.bio, &a.birth, &a.createdAt, &a.updatedAt}
}

func (a *authorRow) profile() *journal.Profile {
	return &journal.Profile{
		ID:          a.id,
		Username:    a.username,
		FullName:    str(a.fullName),
		AvatarURL:   str(a.avatar),
		Biography:   str(a.bio),
		DateOfBirth: str(a.birth),
		CreatedAt:   ms(a.createdAt),
		UpdatedAt:   ms(a.updatedAt),
	}
}

// ListLikes returns the likes on a memory, oldest first.
func (db *DB) ListLikes(memoryID string) ([]journal.Like, error) {
	rows, err := db.Query(`
		SELECT user_id, memory_id, created_at FROM likes
		WHERE memory_id = ? ORDER BY created_at, user_id
	`, memoryID)
	if err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}
	defer rows.Close()

	likes := []journal.Like{}
	for rows.Next() {
		var (
			l  journal.Like
			ts int64
		)
		if err := rows.Scan(&l.UserID, &l.MemoryID, &ts); err != nil {
			return nil, fmt.Errorf("scan like: %w", err)
		}
		l.CreatedAt = ms(ts)
		likes = append(likes, l)
	}
	return likes, rows.Err()
}

// InsertLike records userID liking memoryID. A second like by the same
// user fails with ErrConflict.
func (db *DB) InsertLike(userID, memoryID string) (*journal.Like, error) {
	ts := now()
	_, err := db.Exec(`
		INSERT INTO likes (user_id, memory_id, created_at) VALUES (?, ?, ?)
	`, userID, memoryID, ts)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return nil, fmt.Errorf("insert like: already liked: %w", ErrConflict)
		case isForeignKeyViolation(err):
			return nil, fmt.Errorf("insert like: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("insert like: %w", err)
	}
	return &journal.Like{UserID: userID, MemoryID: memoryID, CreatedAt: ms(ts)}, nil
}

// DeleteLike removes userID's like on memoryID.
func (db *DB) DeleteLike(userID, memoryID string) error {
	result, err := db.Exec(`DELETE FROM likes WHERE user_id = ? AND memory_id = ?`, userID, memoryID)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("delete like: %w", ErrNotFound)
	}
	return nil
}

// ListComments returns the comments on a memory with their authors,
// oldest first.
func (db *DB) ListComments(memoryID string) ([]journal.Comment, error) {
	rows, err := db.Query(`
		SELECT c.id, c.user_id, c.memory_id, c.content, c.created_at, `+authorColumns+`
		FROM comments c JOIN profiles p ON p.id = c.user_id
		WHERE c.memory_id = ?
		ORDER BY c.created_at, c.seq
	`, memoryID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []journal.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

func scanComment(row rowScanner) (*journal.Comment, error) {
	var (
		c  journal.Comment
		ts int64
		a  authorRow
	)
	dest := append([]any{&c.ID, &c.UserID, &c.MemoryID, &c.Content, &ts}, a.dest()...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	c.CreatedAt = ms(ts)
	c.Author = a.profile()
	return &c, nil
}

// InsertComment adds a trimmed comment and returns it with its author.
// The new comment is never dated before the memory's latest comment, so
// appending it keeps a list sorted oldest first.
func (db *DB) InsertComment(userID, memoryID, content string) (*journal.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("insert comment: empty content: %w", ErrInvalid)
	}

	id := newID()
	_, err := db.Exec(`
		INSERT INTO comments (id, seq, user_id, memory_id, content, created_at)
		SELECT ?, COALESCE(MAX(seq), 0) + 1, ?, ?, ?, MAX(?, COALESCE(MAX(created_at), 0))
		FROM comments WHERE memory_id = ?
	`, id, userID, memoryID, content, now(), memoryID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("insert comment: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	c, err := scanComment(db.QueryRow(`
		SELECT c.id, c.user_id, c.memory_id, c.content, c.created_at, `+authorColumns+`
		FROM comments c JOIN profiles p ON p.id = c.user_id
		WHERE c.id = ?
	`, id))
	if err != nil {
		return nil, fmt.Errorf("read inserted comment: %w", err)
	}
	return c, nil
}
