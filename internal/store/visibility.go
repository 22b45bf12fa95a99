package store

import (
	"database/sql"
	"fmt"
)

// visibleTo builds a WHERE fragment that admits rows of alias a viewer may
// read. The row's owner column is alias.user_id. listTable/listColumn name
// the join table linking the row to the user lists it is shared with.
//
//	owner                       always
//	blocked either way          never
//	public                      anyone
//	friends                     accepted viewer->owner edge
//	lists                       member of any list the row is shared with
//	private                     owner only
func visibleTo(alias, listTable, listColumn, viewerID string) (string, []any) {
	clause := fmt.Sprintf(`(
		%[1]s.user_id = ?
		OR (
			NOT EXISTS (
				SELECT 1 FROM friendships b
				WHERE b.status = 'blocked'
				  AND ((b.requester_id = %[1]s.user_id AND b.receiver_id = ?)
				    OR (b.requester_id = ? AND b.receiver_id = %[1]s.user_id))
			)
			AND (
				%[1]s.visibility = 'public'
				OR (%[1]s.visibility = 'friends' AND EXISTS (
					SELECT 1 FROM friendships f
					WHERE f.requester_id = ? AND f.receiver_id = %[1]s.user_id AND f.status = 'accepted'
				))
				OR (%[1]s.visibility = 'lists' AND EXISTS (
					SELECT 1 FROM %[2]s v
					JOIN user_list_members m ON m.list_id = v.list_id
					WHERE v.%[3]s = %[1]s.id AND m.member_id = ?
				))
			)
		)
	)`, alias, listTable, listColumn)
	return clause, []any{viewerID, viewerID, viewerID, viewerID, viewerID}
}

// CanViewMemory reports whether viewerID may read the memory. A missing
// memory reports false.
func (db *DB) CanViewMemory(viewerID, memoryID string) (bool, error) {
	clause, args := visibleTo("m", "memory_list_visibility", "memory_id", viewerID)
	var n int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM memories m WHERE m.id = ? AND `+clause,
		append([]any{memoryID}, args...)...,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("can view memory: %w", err)
	}
	return n > 0, nil
}

// setListVisibility replaces the lists a row is shared with. Every list
// must belong to ownerID.
func (db *DB) setListVisibility(table, column, rowID, ownerID string, listIDs []string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, table, column), rowID); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if err := linkLists(tx, table, column, rowID, ownerID, listIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// linkLists shares rowID with each list inside tx. Every list must belong
// to ownerID.
func linkLists(tx *sql.Tx, table, column, rowID, ownerID string, listIDs []string) error {
	for _, listID := range listIDs {
		var owner string
		err := tx.QueryRow(`SELECT owner_id FROM user_lists WHERE id = ?`, listID).Scan(&owner)
		if err == sql.ErrNoRows {
			return fmt.Errorf("list %s: %w", listID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("lookup list %s: %w", listID, err)
		}
		if owner != ownerID {
			return fmt.Errorf("list %s: %w", listID, ErrForbidden)
		}
		if _, err := tx.Exec(
			fmt.Sprintf(`INSERT INTO %s (list_id, %s) VALUES (?, ?)`, table, column),
			listID, rowID,
		); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return nil
}
