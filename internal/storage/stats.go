package storage

import "fmt"

// Stats summarizes the stored corpus.
type Stats struct {
	Articles    int         `json:"articles"`
	Authors     int         `json:"authors"`
	Authorships int         `json:"authorships"`
	Categories  int         `json:"categories"`
	ByYear      map[int]int `json:"by_year"`
}

// Stats returns corpus totals and the per-year article distribution.
func (d *DB) Stats() (Stats, error) {
	s := Stats{ByYear: make(map[int]int)}

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM articles", &s.Articles},
		{"SELECT COUNT(*) FROM authors", &s.Authors},
		{"SELECT COUNT(*) FROM authorships", &s.Authorships},
		{"SELECT COUNT(*) FROM categories", &s.Categories},
	}
	for _, c := range counts {
		if err := d.db.QueryRow(c.query).Scan(c.dest); err != nil {
			return Stats{}, fmt.Errorf("counting: %w", err)
		}
	}

	rows, err := d.db.Query(`SELECT pub_year, COUNT(*) FROM articles GROUP BY pub_year`)
	if err != nil {
		return Stats{}, fmt.Errorf("counting by year: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var year, n int
		if err := rows.Scan(&year, &n); err != nil {
			return Stats{}, err
		}
		s.ByYear[year] = n
	}
	return s, rows.Err()
}
