package storage

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/scholium/arxsearch/internal/article"
)

// ReplaceCorpus clears the store and persists the canonical batch plus the
// taxonomy in one transaction. Partial failures roll back, leaving the prior
// corpus intact.
func (d *DB) ReplaceCorpus(articles []article.Article, categories []article.Category) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Cascades clear authorships and article_categories.
	for _, stmt := range []string{
		"DELETE FROM articles",
		"DELETE FROM authors",
		"DELETE FROM categories",
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("clearing tables: %w", err)
		}
	}

	for _, c := range categories {
		_, err := tx.Exec(`INSERT INTO categories (code, name, description) VALUES (?, ?, ?)`,
			c.Code, c.Name, nullableString(c.Description))
		if err != nil {
			return fmt.Errorf("inserting category %s: %w", c.Code, err)
		}
	}

	for _, art := range articles {
		if err := insertArticleTx(tx, art); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// InsertArticle persists one article with its authorship and category
// associations, all-or-nothing.
func (d *DB) InsertArticle(art article.Article) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertArticleTx(tx, art); err != nil {
		return err
	}
	return tx.Commit()
}

func insertArticleTx(tx *sql.Tx, art article.Article) error {
	_, err := tx.Exec(`
		INSERT INTO articles (id, title, abstract, published, pub_year, doi, pdf_url)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		art.ID, art.Title, art.Abstract, art.Published, art.Year,
		nullableString(art.DOI), nullableString(art.PDFURL))
	if err != nil {
		return fmt.Errorf("inserting article %s: %w", art.ID, err)
	}

	for i, author := range art.Authors {
		authorID, err := upsertAuthorTx(tx, author)
		if err != nil {
			return fmt.Errorf("inserting author %q for %s: %w", author.Name, art.ID, err)
		}
		_, err = tx.Exec(`INSERT INTO authorships (article_id, author_id, position) VALUES (?, ?, ?)`,
			art.ID, authorID, i+1)
		if err != nil {
			return fmt.Errorf("inserting authorship %s/%q: %w", art.ID, author.Name, err)
		}
	}

	for i, code := range art.Categories {
		_, err := tx.Exec(`INSERT INTO article_categories (article_id, code, position) VALUES (?, ?, ?)`,
			art.ID, code, i+1)
		if err != nil {
			return fmt.Errorf("inserting category %s for %s: %w", code, art.ID, err)
		}
	}

	return nil
}

// upsertAuthorTx inserts an author keyed by canonical name if absent and
// returns the row id either way.
func upsertAuthorTx(tx *sql.Tx, a article.Author) (int64, error) {
	_, err := tx.Exec(`INSERT OR IGNORE INTO authors (name, affiliation, orcid) VALUES (?, ?, ?)`,
		a.Name, nullableString(a.Affiliation), nullableString(a.ORCID))
	if err != nil {
		return 0, err
	}

	var id int64
	if err := tx.QueryRow(`SELECT id FROM authors WHERE name = ?`, a.Name).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// GetByID retrieves the full joined record for one article. Returns nil
// without error when the id is unknown.
func (d *DB) GetByID(id string) (*article.Article, error) {
	arts, err := d.GetByIDs([]string{id})
	if err != nil {
		return nil, err
	}
	if len(arts) == 0 {
		return nil, nil
	}
	return &arts[0], nil
}

// GetByIDs retrieves full joined records for a batch of ids, preserving the
// input order. Unknown ids are silently absent from the result. Arbitrarily
// large batches are queried in id chunks under SQLite's variable limit.
func (d *DB) GetByIDs(ids []string) ([]article.Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	byID := make(map[string]*article.Article, len(ids))
	for _, chunk := range idChunks(ids) {
		if err := d.fetchArticles(chunk, byID); err != nil {
			return nil, err
		}
		if err := d.attachAuthors(chunk, byID); err != nil {
			return nil, err
		}
		if err := d.attachCategories(chunk, byID); err != nil {
			return nil, err
		}
	}

	out := make([]article.Article, 0, len(byID))
	for _, id := range ids {
		if art, ok := byID[id]; ok {
			out = append(out, *art)
		}
	}
	return out, nil
}

// fetchArticles loads the article rows for one id chunk into byID.
func (d *DB) fetchArticles(ids []string, byID map[string]*article.Article) error {
	query, args, err := sq.Select("id", "title", "abstract", "published", "pub_year", "doi", "pdf_url").
		From("articles").
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building article query: %w", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return fmt.Errorf("fetching articles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var art article.Article
		var doi, pdfURL sql.NullString
		if err := rows.Scan(&art.ID, &art.Title, &art.Abstract, &art.Published,
			&art.Year, &doi, &pdfURL); err != nil {
			return fmt.Errorf("scanning article: %w", err)
		}
		art.DOI = doi.String
		art.PDFURL = pdfURL.String
		byID[art.ID] = &art
	}
	return rows.Err()
}

func (d *DB) attachAuthors(ids []string, byID map[string]*article.Article) error {
	query, args, err := sq.Select("ap.article_id", "a.name", "a.affiliation", "a.orcid").
		From("authorships ap").
		Join("authors a ON a.id = ap.author_id").
		Where(sq.Eq{"ap.article_id": ids}).
		OrderBy("ap.article_id", "ap.position").
		ToSql()
	if err != nil {
		return fmt.Errorf("building authors query: %w", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return fmt.Errorf("fetching authors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var articleID string
		var author article.Author
		var affiliation, orcid sql.NullString
		if err := rows.Scan(&articleID, &author.Name, &affiliation, &orcid); err != nil {
			return fmt.Errorf("scanning author: %w", err)
		}
		author.Affiliation = affiliation.String
		author.ORCID = orcid.String
		if art, ok := byID[articleID]; ok {
			art.Authors = append(art.Authors, author)
		}
	}
	return rows.Err()
}

func (d *DB) attachCategories(ids []string, byID map[string]*article.Article) error {
	query, args, err := sq.Select("article_id", "code").
		From("article_categories").
		Where(sq.Eq{"article_id": ids}).
		OrderBy("article_id", "position").
		ToSql()
	if err != nil {
		return fmt.Errorf("building categories query: %w", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return fmt.Errorf("fetching categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var articleID, code string
		if err := rows.Scan(&articleID, &code); err != nil {
			return fmt.Errorf("scanning category: %w", err)
		}
		if art, ok := byID[articleID]; ok {
			art.Categories = append(art.Categories, code)
		}
	}
	return rows.Err()
}

// ListAll returns every article with full joined metadata, ordered by id.
// Used by the index build path.
func (d *DB) ListAll() ([]article.Article, error) {
	rows, err := d.db.Query(`SELECT id FROM articles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing article ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return d.GetByIDs(ids)
}

// Count returns the total number of articles.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM articles`).Scan(&count)
	return count, err
}
