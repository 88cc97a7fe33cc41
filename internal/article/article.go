// Package article defines the core domain types for the article corpus.
package article

// Article represents a canonical scientific article accepted into the corpus.
type Article struct {
	// Identity
	ID string `json:"id"` // External identifier (e.g. arXiv id), unique within the corpus

	// Metadata
	Title    string `json:"title"`
	Abstract string `json:"abstract"`

	// Publication date as supplied by the source, plus the extracted year
	// used for filtering and statistics.
	Published string `json:"published"`
	Year      int    `json:"year"`

	// Ordered taxonomy codes (primary category first).
	Categories []string `json:"categories"`

	// Optional identifiers and links
	DOI    string `json:"doi,omitempty"`
	PDFURL string `json:"pdf_url,omitempty"`

	// Authors in signing order.
	Authors []Author `json:"authors"`
}

// Author represents an article author keyed by canonical name.
type Author struct {
	Name        string `json:"name"`                  // Canonical "Last, First" or single-token form
	Affiliation string `json:"affiliation,omitempty"` // Free-text affiliation when known
	ORCID       string `json:"orcid,omitempty"`       // Persistent researcher identifier (no URL prefix)
}

// Authorship links an article to an author at a signing position.
// Positions are 1-based and contiguous per article.
type Authorship struct {
	ArticleID string `json:"article_id"`
	Author    Author `json:"author"`
	Position  int    `json:"position"`
}

// Category is an entry in the fixed taxonomy.
type Category struct {
	Code        string `json:"code"` // Short alphanumeric taxonomy code, e.g. "cs.LG"
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// RawRecord is the loosely shaped record produced by the crawler before
// normalization. Any field may be empty, malformed, or duplicated across
// records; the normalizer is the only component that inspects it.
type RawRecord struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Abstract   string      `json:"abstract"`
	Authors    []RawAuthor `json:"authors"`
	Published  string      `json:"published"`
	Categories []string    `json:"categories"`
	DOI        string      `json:"doi,omitempty"`
	PDFURL     string      `json:"pdf_url,omitempty"`
}

// RawAuthor is one author as supplied by a source, name uncanonicalized and
// the optional identity fields possibly absent.
type RawAuthor struct {
	Name        string `json:"name"`
	Affiliation string `json:"affiliation,omitempty"`
	ORCID       string `json:"orcid,omitempty"`
}

// FirstAuthor returns the first author in signing order, or a zero Author
// when the article has none.
func (a *Article) FirstAuthor() Author {
	if len(a.Authors) == 0 {
		return Author{}
	}
	return a.Authors[0]
}
