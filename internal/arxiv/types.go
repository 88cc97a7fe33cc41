// Package arxiv provides a rate-limited client for the arXiv Atom API,
// producing raw records for the normalizer.
package arxiv

import (
	"encoding/xml"
	"strings"

	"github.com/scholium/arxsearch/internal/article"
)

// feed is the Atom response envelope from the arXiv query API.
type feed struct {
	XMLName      xml.Name `xml:"feed"`
	TotalResults int      `xml:"totalResults"`
	StartIndex   int      `xml:"startIndex"`
	Entries      []entry  `xml:"entry"`
}

// entry is one article in the Atom feed.
type entry struct {
	ID         string     `xml:"id"` // Full abs URL, e.g. http://arxiv.org/abs/2101.00001v2
	Title      string     `xml:"title"`
	Summary    string     `xml:"summary"`
	Published  string     `xml:"published"`
	Authors    []author   `xml:"author"`
	Categories []category `xml:"category"`
	Links      []link     `xml:"link"`
	DOI        string     `xml:"doi"`
}

type author struct {
	Name        string `xml:"name"`
	Affiliation string `xml:"affiliation"`
}

type category struct {
	Term string `xml:"term,attr"`
}

type link struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

// toRawRecord converts an Atom entry to the normalizer's input shape. No
// cleaning happens here; the normalizer owns validation.
func (e entry) toRawRecord() article.RawRecord {
	rec := article.RawRecord{
		ID:        shortID(e.ID),
		Title:     e.Title,
		Abstract:  e.Summary,
		Published: e.Published,
		DOI:       e.DOI,
	}

	for _, a := range e.Authors {
		rec.Authors = append(rec.Authors, article.RawAuthor{
			Name:        a.Name,
			Affiliation: a.Affiliation,
		})
	}
	for _, c := range e.Categories {
		rec.Categories = append(rec.Categories, c.Term)
	}
	for _, l := range e.Links {
		if l.Title == "pdf" || l.Type == "application/pdf" {
			rec.PDFURL = l.Href
			break
		}
	}

	return rec
}

// shortID strips the abs URL prefix, leaving the bare arXiv identifier with
// its version suffix.
func shortID(id string) string {
	if i := strings.LastIndex(id, "/abs/"); i >= 0 {
		return id[i+len("/abs/"):]
	}
	return id
}
