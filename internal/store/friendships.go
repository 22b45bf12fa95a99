package store

import (
	"database/sql"
	"fmt"

	"github.com/lazypower/memoria/internal/relationship"
)

const edgeColumns = `id, requester_id, receiver_id, status, created_at, updated_at`

func scanEdges(rows *sql.Rows) ([]relationship.Edge, error) {
	defer rows.Close()

	var edges []relationship.Edge
	for rows.Next() {
		var (
			e                    relationship.Edge
			status               string
			createdAt, updatedAt int64
		)
		if err := rows.Scan(&e.ID, &e.RequesterID, &e.ReceiverID, &status, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		e.Status = relationship.Status(status)
		e.CreatedAt = ms(createdAt)
		e.UpdatedAt = ms(updatedAt)
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// RequestFriendship creates a pending edge from requester to receiver.
// It fails with ErrConflict if the requester already has an edge to the
// receiver, and with ErrForbidden if the receiver has blocked the requester.
func (db *DB) RequestFriendship(requesterID, receiverID string) (*relationship.Edge, error) {
	if requesterID == receiverID {
		return nil, fmt.Errorf("request friendship: cannot befriend yourself: %w", ErrInvalid)
	}

	var blocked int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM friendships
		WHERE requester_id = ? AND receiver_id = ? AND status = 'blocked'
	`, receiverID, requesterID).Scan(&blocked)
	if err != nil {
		return nil, fmt.Errorf("check block: %w", err)
	}
	if blocked > 0 {
		return nil, fmt.Errorf("request friendship: %w", ErrForbidden)
	}

	ts := now()
	e := relationship.Edge{
		ID:          newID(),
		RequesterID: requesterID,
		ReceiverID:  receiverID,
		Status:      relationship.StatusPending,
		CreatedAt:   ms(ts),
		UpdatedAt:   ms(ts),
	}
	_, err = db.Exec(`
		INSERT INTO friendships (id, requester_id, receiver_id, status, created_at, updated_at)
		VALUES (?, ?, ?, 'pending', ?, ?)
	`, e.ID, requesterID, receiverID, ts, ts)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return nil, fmt.Errorf("request friendship: edge exists: %w", ErrConflict)
		case isForeignKeyViolation(err):
			return nil, fmt.Errorf("request friendship: unknown user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("request friendship: %w", err)
	}
	return &e, nil
}

// AcceptFriendship turns the pending edge requester->receiver into accepted.
// Only the receiver may call this.
func (db *DB) AcceptFriendship(requesterID, receiverID string) error {
	result, err := db.Exec(`
		UPDATE friendships SET status = 'accepted', updated_at = ?
		WHERE requester_id = ? AND receiver_id = ? AND status = 'pending'
	`, now(), requesterID, receiverID)
	if err != nil {
		return fmt.Errorf("accept friendship: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("no pending request from %s: %w", requesterID, ErrNotFound)
	}
	return nil
}

// RejectFriendship deletes a pending edge requester->receiver.
func (db *DB) RejectFriendship(requesterID, receiverID string) error {
	result, err := db.Exec(`
		DELETE FROM friendships
		WHERE requester_id = ? AND receiver_id = ? AND status = 'pending'
	`, requesterID, receiverID)
	if err != nil {
		return fmt.Errorf("reject friendship: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("no pending request from %s: %w", requesterID, ErrNotFound)
	}
	return nil
}

// BlockUser sets the blocker->blocked edge to blocked, creating it if needed.
// The opposite edge is left alone.
func (db *DB) BlockUser(blockerID, blockedID string) error {
	if blockerID == blockedID {
		return fmt.Errorf("block user: cannot block yourself: %w", ErrInvalid)
	}
	ts := now()
	_, err := db.Exec(`
		INSERT INTO friendships (id, requester_id, receiver_id, status, created_at, updated_at)
		VALUES (?, ?, ?, 'blocked', ?, ?)
		ON CONFLICT (requester_id, receiver_id) DO UPDATE SET status = 'blocked', updated_at = excluded.updated_at
	`, newID(), blockerID, blockedID, ts, ts)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("block user: unknown user: %w", ErrNotFound)
		}
		return fmt.Errorf("block user: %w", err)
	}
	return nil
}

// DeleteFriendship removes the requester->receiver edge whatever its status.
// This covers unfollowing, cancelling a request, and unblocking.
func (db *DB) DeleteFriendship(requesterID, receiverID string) error {
	result, err := db.Exec(`
		DELETE FROM friendships WHERE requester_id = ? AND receiver_id = ?
	`, requesterID, receiverID)
	if err != nil {
		return fmt.Errorf("delete friendship: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("no edge to %s: %w", receiverID, ErrNotFound)
	}
	return nil
}

// FriendshipsBetween returns the edges in either direction between a and b.
func (db *DB) FriendshipsBetween(a, b string) ([]relationship.Edge, error) {
	rows, err := db.Query(`
		SELECT `+edgeColumns+` FROM friendships
		WHERE (requester_id = ? AND receiver_id = ?) OR (requester_id = ? AND receiver_id = ?)
		ORDER BY created_at
	`, a, b, b, a)
	if err != nil {
		return nil, fmt.Errorf("friendships between: %w", err)
	}
	edges, err := scanEdges(rows)
	if err != nil {
		return nil, fmt.Errorf("scan friendships: %w", err)
	}
	return edges, nil
}

// FriendshipsOf returns every edge that touches userID, oldest first.
func (db *DB) FriendshipsOf(userID string) ([]relationship.Edge, error) {
	rows, err := db.Query(`
		SELECT `+edgeColumns+` FROM friendships
		WHERE requester_id = ? OR receiver_id = ?
		ORDER BY created_at
	`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("friendships of: %w", err)
	}
	edges, err := scanEdges(rows)
	if err != nil {
		return nil, fmt.Errorf("scan friendships: %w", err)
	}
	return edges, nil
}
