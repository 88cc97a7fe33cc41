package storage

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// Filters restricts a candidate id set by metadata. Zero values mean no
// constraint; both year bounds are inclusive. An article passes the category
// filter when it carries at least one of the given codes.
type Filters struct {
	YearFrom   int
	YearTo     int
	Categories []string
}

// IsZero reports whether no constraint is set.
func (f Filters) IsZero() bool {
	return f.YearFrom == 0 && f.YearTo == 0 && len(f.Categories) == 0
}

// FilterIDs evaluates the filters against a batch of candidate ids and
// returns the ids that pass. Candidates are queried in id chunks so the
// batch size never outgrows SQLite's bound-variable limit; there are no
// per-row round trips.
func (d *DB) FilterIDs(ids []string, f Filters) (map[string]bool, error) {
	if len(ids) == 0 {
		return map[string]bool{}, nil
	}
	if f.IsZero() {
		pass := make(map[string]bool, len(ids))
		for _, id := range ids {
			pass[id] = true
		}
		return pass, nil
	}

	pass := make(map[string]bool)
	for _, chunk := range idChunks(ids) {
		if err := d.filterChunk(chunk, f, pass); err != nil {
			return nil, err
		}
	}
	return pass, nil
}

// filterChunk evaluates one candidate chunk, adding passing ids to pass.
func (d *DB) filterChunk(ids []string, f Filters, pass map[string]bool) error {
	q := sq.Select("id").From("articles").Where(sq.Eq{"id": ids})
	if f.YearFrom > 0 {
		q = q.Where(sq.GtOrEq{"pub_year": f.YearFrom})
	}
	if f.YearTo > 0 {
		q = q.Where(sq.LtOrEq{"pub_year": f.YearTo})
	}
	if len(f.Categories) > 0 {
		sub, subArgs, err := sq.Select("1").
			From("article_categories ac").
			Where("ac.article_id = articles.id").
			Where(sq.Eq{"ac.code": f.Categories}).
			ToSql()
		if err != nil {
			return fmt.Errorf("building category subquery: %w", err)
		}
		q = q.Where("EXISTS ("+sub+")", subArgs...)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("building filter query: %w", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return fmt.Errorf("filtering ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		pass[id] = true
	}
	return rows.Err()
}
