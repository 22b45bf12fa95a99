package store

import (
	"database/sql"
	"fmt"

	"github.com/lazypower/memoria/internal/journal"
)

// CreatePeriod validates and inserts a period owned by p.UserID, sharing it
// with listIDs. Nothing is stored if any list is unknown or not the owner's.
func (db *DB) CreatePeriod(p journal.Period, listIDs ...string) (*journal.Period, error) {
	if err := journal.ValidatePeriod(p); err != nil {
		return nil, fmt.Errorf("create period: %v: %w", err, ErrInvalid)
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	p.ID = newID()
	ts := now()
	_, err = tx.Exec(`
		INSERT INTO periods (id, user_id, title, description, type, start_date, end_date, location, visibility, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.UserID, p.Title, nullable(p.Description), string(p.Type), p.StartDate, nullable(p.EndDate),
		nullable(p.Location), string(p.Visibility), ts, ts)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("create period: unknown user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("create period: %w", err)
	}
	if err := linkLists(tx, "period_list_visibility", "period_id", p.ID, p.UserID, listIDs); err != nil {
		return nil, fmt.Errorf("create period: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create period: %w", err)
	}
	p.CreatedAt = ms(ts)
	p.UpdatedAt = ms(ts)
	return &p, nil
}

// VisiblePeriods returns ownerID's periods that viewerID may read, latest
// start first.
func (db *DB) VisiblePeriods(viewerID, ownerID string) ([]journal.Period, error) {
	clause, args := visibleTo("pr", "period_list_visibility", "period_id", viewerID)
	rows, err := db.Query(`
		SELECT pr.id, pr.user_id, pr.title, pr.description, pr.type, pr.start_date, pr.end_date,
		       pr.location, pr.visibility, pr.created_at, pr.updated_at
		FROM periods pr
		WHERE pr.user_id = ? AND `+clause+`
		ORDER BY pr.start_date DESC`,
		append([]any{ownerID}, args...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("visible periods: %w", err)
	}
	defer rows.Close()

	var out []journal.Period
	for rows.Next() {
		var (
			p                    journal.Period
			desc, end, loc       sql.NullString
			typ, vis             string
			createdAt, updatedAt int64
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &desc, &typ, &p.StartDate, &end, &loc, &vis, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan period: %w", err)
		}
		p.Description = str(desc)
		p.EndDate = str(end)
		p.Location = str(loc)
		p.Type = journal.PeriodType(typ)
		p.Visibility = journal.Visibility(vis)
		p.CreatedAt = ms(createdAt)
		p.UpdatedAt = ms(updatedAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

// SetPeriodLists shares a period with the given lists of its owner,
// replacing any previous set.
func (db *DB) SetPeriodLists(ownerID, periodID string, listIDs []string) error {
	if err := db.requireOwner("periods", periodID, ownerID); err != nil {
		return err
	}
	if err := db.setListVisibility("period_list_visibility", "period_id", periodID, ownerID, listIDs); err != nil {
		return fmt.Errorf("set period lists: %w", err)
	}
	return nil
}
