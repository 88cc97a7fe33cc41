// Package normalizer turns raw crawled records into canonical articles.
//
// Normalization validates required fields, cleans text, canonicalizes author
// names, validates category codes against the taxonomy, and drops duplicate
// records by derived signature. Rejected records are reported, never
// propagated as failures; persistence is the caller's responsibility.
package normalizer

import (
	"errors"

	"go.uber.org/zap"

	"github.com/scholium/arxsearch/internal/article"
	"github.com/scholium/arxsearch/internal/taxonomy"
)

// Report aggregates the outcome of normalizing one batch.
type Report struct {
	Input             int `json:"input"`
	Accepted          int `json:"accepted"`
	Duplicates        int `json:"duplicates"`
	Invalid           int `json:"invalid"`            // Records rejected by validation
	UnknownCategories int `json:"unknown_categories"` // Individual codes dropped from accepted records
}

// Normalizer validates and canonicalizes raw records.
type Normalizer struct {
	taxonomy *taxonomy.Taxonomy
	logger   *zap.Logger
}

// New creates a normalizer validating category codes against the given
// taxonomy.
func New(tax *taxonomy.Taxonomy, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{taxonomy: tax, logger: logger}
}

// Normalize processes a batch of raw records in order and returns the
// accepted canonical articles plus a batch report. Duplicate policy is
// first-seen wins: a record whose dedup key collides with an earlier
// accepted record is discarded.
func (n *Normalizer) Normalize(records []article.RawRecord) ([]article.Article, Report) {
	report := Report{Input: len(records)}
	seenKeys := make(map[DedupKey]string, len(records))
	seenIDs := make(map[string]string, len(records))

	accepted := make([]article.Article, 0, len(records))

	for _, rec := range records {
		art, dropped, err := n.normalizeOne(rec)
		if err != nil {
			report.Invalid++
			var catErr *UnknownCategoryError
			if errors.As(err, &catErr) {
				n.logger.Warn("record rejected: unknown categories",
					zap.String("record", rec.ID), zap.Strings("codes", catErr.Codes))
			} else {
				n.logger.Warn("record rejected", zap.String("record", rec.ID), zap.Error(err))
			}
			continue
		}
		report.UnknownCategories += dropped

		// The external id itself is a hard uniqueness boundary.
		if prior, ok := seenIDs[art.ID]; ok {
			report.Duplicates++
			n.logger.Debug("duplicate record id discarded",
				zap.String("record", art.ID), zap.String("kept", prior))
			continue
		}

		key := MakeDedupKey(art.Title, art.FirstAuthor().Name, art.Year)
		if prior, ok := seenKeys[key]; ok {
			report.Duplicates++
			n.logger.Debug("duplicate record discarded",
				zap.String("record", art.ID), zap.String("kept", prior))
			continue
		}

		seenIDs[art.ID] = art.ID
		seenKeys[key] = art.ID
		accepted = append(accepted, art)
		report.Accepted++
	}

	return accepted, report
}

// normalizeOne validates and cleans a single record. The int result counts
// unknown category codes dropped from an otherwise accepted record.
func (n *Normalizer) normalizeOne(rec article.RawRecord) (article.Article, int, error) {
	id := CleanText(rec.ID)
	if id == "" {
		return article.Article{}, 0, &ValidationError{Field: "id", Reason: "missing"}
	}

	title := CleanText(rec.Title)
	if title == "" {
		return article.Article{}, 0, &ValidationError{RecordID: id, Field: "title", Reason: "missing"}
	}

	abstract := CleanText(rec.Abstract)
	if abstract == "" {
		return article.Article{}, 0, &ValidationError{RecordID: id, Field: "abstract", Reason: "missing"}
	}

	authors := make([]article.Author, 0, len(rec.Authors))
	for _, raw := range rec.Authors {
		name := CanonicalAuthorName(raw.Name)
		if name == "" {
			continue
		}
		authors = append(authors, article.Author{
			Name:        name,
			Affiliation: CleanText(raw.Affiliation),
			ORCID:       CleanText(raw.ORCID),
		})
	}
	if len(authors) == 0 {
		return article.Article{}, 0, &ValidationError{RecordID: id, Field: "authors", Reason: "missing"}
	}

	published := CleanText(rec.Published)
	year := ExtractYear(published)
	if year == 0 {
		return article.Article{}, 0, &ValidationError{RecordID: id, Field: "published", Reason: "no plausible year"}
	}

	categories, dropped, err := n.validCategories(id, rec.Categories)
	if err != nil {
		return article.Article{}, 0, err
	}

	return article.Article{
		ID:         id,
		Title:      title,
		Abstract:   abstract,
		Published:  published,
		Year:       year,
		Categories: categories,
		DOI:        CleanText(rec.DOI),
		PDFURL:     CleanText(rec.PDFURL),
		Authors:    authors,
	}, dropped, nil
}

// validCategories filters the supplied codes against the taxonomy, keeping
// input order and removing duplicates. A record carrying codes where none is
// valid is rejected; a record with no codes at all is fine.
func (n *Normalizer) validCategories(recordID string, codes []string) ([]string, int, error) {
	if len(codes) == 0 {
		return nil, 0, nil
	}

	var valid []string
	var unknown []string
	seen := make(map[string]bool, len(codes))

	for _, raw := range codes {
		code := CleanText(raw)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		if n.taxonomy.Contains(code) {
			valid = append(valid, code)
		} else {
			unknown = append(unknown, code)
		}
	}

	if len(valid) == 0 {
		return nil, 0, &UnknownCategoryError{RecordID: recordID, Codes: unknown}
	}
	return valid, len(unknown), nil
}
