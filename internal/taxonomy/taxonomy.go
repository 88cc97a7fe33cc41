// Package taxonomy holds the fixed category taxonomy articles are validated against.
package taxonomy

import (
	"sort"

	"github.com/scholium/arxsearch/internal/article"
)

// Taxonomy is an immutable set of category codes with display metadata.
type Taxonomy struct {
	byCode map[string]article.Category
}

// New creates a taxonomy from a list of categories. Later duplicates of a
// code silently replace earlier ones.
func New(categories []article.Category) *Taxonomy {
	byCode := make(map[string]article.Category, len(categories))
	for _, c := range categories {
		byCode[c.Code] = c
	}
	return &Taxonomy{byCode: byCode}
}

// Lookup returns the category for a code.
func (t *Taxonomy) Lookup(code string) (article.Category, bool) {
	c, ok := t.byCode[code]
	return c, ok
}

// Contains reports whether the code is part of the taxonomy.
func (t *Taxonomy) Contains(code string) bool {
	_, ok := t.byCode[code]
	return ok
}

// All returns every category sorted by code.
func (t *Taxonomy) All() []article.Category {
	out := make([]article.Category, 0, len(t.byCode))
	for _, c := range t.byCode {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Len returns the number of categories.
func (t *Taxonomy) Len() int {
	return len(t.byCode)
}

// Default returns the built-in arXiv category taxonomy covered by this corpus.
func Default() *Taxonomy {
	return New(defaultCategories)
}

var defaultCategories = []article.Category{
	{Code: "cs.AI", Name: "Artificial Intelligence"},
	{Code: "cs.CL", Name: "Computation and Language"},
	{Code: "cs.CR", Name: "Cryptography and Security"},
	{Code: "cs.CV", Name: "Computer Vision and Pattern Recognition"},
	{Code: "cs.DB", Name: "Databases"},
	{Code: "cs.DC", Name: "Distributed, Parallel, and Cluster Computing"},
	{Code: "cs.DS", Name: "Data Structures and Algorithms"},
	{Code: "cs.IR", Name: "Information Retrieval"},
	{Code: "cs.LG", Name: "Machine Learning"},
	{Code: "cs.NE", Name: "Neural and Evolutionary Computing"},
	{Code: "cs.RO", Name: "Robotics"},
	{Code: "cs.SE", Name: "Software Engineering"},
	{Code: "eess.AS", Name: "Audio and Speech Processing"},
	{Code: "eess.IV", Name: "Image and Video Processing"},
	{Code: "eess.SP", Name: "Signal Processing"},
	{Code: "math.CO", Name: "Combinatorics"},
	{Code: "math.NA", Name: "Numerical Analysis"},
	{Code: "math.OC", Name: "Optimization and Control"},
	{Code: "math.PR", Name: "Probability"},
	{Code: "math.ST", Name: "Statistics Theory"},
	{Code: "physics.comp-ph", Name: "Computational Physics"},
	{Code: "physics.data-an", Name: "Data Analysis, Statistics and Probability"},
	{Code: "physics.med-ph", Name: "Medical Physics"},
	{Code: "q-bio.BM", Name: "Biomolecules"},
	{Code: "q-bio.GN", Name: "Genomics"},
	{Code: "q-bio.NC", Name: "Neurons and Cognition"},
	{Code: "q-bio.PE", Name: "Populations and Evolution"},
	{Code: "q-bio.QM", Name: "Quantitative Methods"},
	{Code: "q-fin.ST", Name: "Statistical Finance"},
	{Code: "stat.AP", Name: "Applications"},
	{Code: "stat.CO", Name: "Computation"},
	{Code: "stat.ME", Name: "Methodology"},
	{Code: "stat.ML", Name: "Machine Learning (Statistics)"},
}
