package storage

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/scholium/arxsearch/internal/article"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "corpus.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testCategories() []article.Category {
	return []article.Category{
		{Code: "cs.CL", Name: "Computation and Language"},
		{Code: "cs.IR", Name: "Information Retrieval"},
		{Code: "cs.LG", Name: "Machine Learning"},
	}
}

func testArticles() []article.Article {
	return []article.Article{
		{
			ID:         "2101.00001v1",
			Title:      "Transformers for Retrieval",
			Abstract:   "We study retrieval with transformers.",
			Published:  "2021-01-01T00:00:00Z",
			Year:       2021,
			Categories: []string{"cs.IR", "cs.CL"},
			DOI:        "10.1000/retrieval",
			Authors: []article.Author{
				{Name: "Smith, Jane"},
				{Name: "Nguyen, An"},
			},
		},
		{
			ID:         "1912.00002v2",
			Title:      "Curriculum Learning Revisited",
			Abstract:   "A second look at curricula.",
			Published:  "2019-12-05T00:00:00Z",
			Year:       2019,
			Categories: []string{"cs.LG"},
			Authors: []article.Author{
				{Name: "Nguyen, An"},
			},
		},
		{
			ID:        "2203.00003v1",
			Title:     "Scaling Laws for Everything",
			Abstract:  "Everything scales, apparently.",
			Published: "2022-03-10T00:00:00Z",
			Year:      2022,
			Authors: []article.Author{
				{Name: "Ito, Kenji"},
			},
		},
	}
}

func seed(t *testing.T, db *DB) {
	t.Helper()
	if err := db.ReplaceCorpus(testArticles(), testCategories()); err != nil {
		t.Fatalf("ReplaceCorpus() error = %v", err)
	}
}

func TestReplaceCorpusAndGetByID(t *testing.T) {
	db := testDB(t)
	seed(t, db)

	art, err := db.GetByID("2101.00001v1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if art == nil {
		t.Fatal("GetByID() = nil for known article")
	}

	if art.Title != "Transformers for Retrieval" {
		t.Errorf("Title = %q", art.Title)
	}
	if art.Year != 2021 {
		t.Errorf("Year = %d, want 2021", art.Year)
	}
	if art.DOI != "10.1000/retrieval" {
		t.Errorf("DOI = %q", art.DOI)
	}

	if len(art.Authors) != 2 {
		t.Fatalf("Authors = %v, want 2", art.Authors)
	}
	if art.Authors[0].Name != "Smith, Jane" || art.Authors[1].Name != "Nguyen, An" {
		t.Errorf("Authors = %v, want signing order preserved", art.Authors)
	}

	if len(art.Categories) != 2 || art.Categories[0] != "cs.IR" || art.Categories[1] != "cs.CL" {
		t.Errorf("Categories = %v, want [cs.IR cs.CL] in stored order", art.Categories)
	}
}

func TestGetByID_Unknown(t *testing.T) {
	db := testDB(t)
	seed(t, db)

	art, err := db.GetByID("does-not-exist")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if art != nil {
		t.Errorf("GetByID() = %v, want nil", art)
	}
}

func TestGetByIDs_PreservesInputOrder(t *testing.T) {
	db := testDB(t)
	seed(t, db)

	ids := []string{"2203.00003v1", "2101.00001v1", "missing", "1912.00002v2"}
	arts, err := db.GetByIDs(ids)
	if err != nil {
		t.Fatalf("GetByIDs() error = %v", err)
	}

	want := []string{"2203.00003v1", "2101.00001v1", "1912.00002v2"}
	if len(arts) != len(want) {
		t.Fatalf("got %d articles, want %d", len(arts), len(want))
	}
	for i, id := range want {
		if arts[i].ID != id {
			t.Errorf("arts[%d].ID = %q, want %q", i, arts[i].ID, id)
		}
	}
}

func TestReplaceCorpus_SharedAuthorRow(t *testing.T) {
	db := testDB(t)
	seed(t, db)

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	// "Nguyen, An" signs two articles but is stored once.
	if stats.Authors != 3 {
		t.Errorf("Authors = %d, want 3", stats.Authors)
	}
	if stats.Authorships != 4 {
		t.Errorf("Authorships = %d, want 4", stats.Authorships)
	}
}

func TestReplaceCorpus_ReplacesPriorGeneration(t *testing.T) {
	db := testDB(t)
	seed(t, db)

	replacement := []article.Article{
		{
			ID:        "fresh-1",
			Title:     "A Fresh Start",
			Abstract:  "New corpus.",
			Published: "2023-01-01",
			Year:      2023,
			Authors:   []article.Author{{Name: "New, Author"}},
		},
	}
	if err := db.ReplaceCorpus(replacement, testCategories()); err != nil {
		t.Fatalf("ReplaceCorpus() error = %v", err)
	}

	count, err := db.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}

	old, err := db.GetByID("2101.00001v1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if old != nil {
		t.Error("prior generation still present after replace")
	}

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Authors != 1 || stats.Authorships != 1 {
		t.Errorf("stats = %+v, want prior authors cleared", stats)
	}
}

func TestReplaceCorpus_RollsBackOnBadReference(t *testing.T) {
	db := testDB(t)
	seed(t, db)

	bad := testArticles()
	bad[2].Categories = []string{"not.in.taxonomy"}

	if err := db.ReplaceCorpus(bad, testCategories()); err == nil {
		t.Fatal("ReplaceCorpus() with unknown category code should fail")
	}

	// The failed replacement must leave the prior corpus intact.
	count, err := db.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Count() = %d after rollback, want 3", count)
	}
}

func TestInsertArticle_RollsBackOnBadReference(t *testing.T) {
	db := testDB(t)
	seed(t, db)

	err := db.InsertArticle(article.Article{
		ID:         "broken-1",
		Title:      "Broken",
		Abstract:   "Refers to a category that does not exist.",
		Published:  "2022-01-01",
		Year:       2022,
		Categories: []string{"no.such.code"},
		Authors:    []article.Author{{Name: "Someone"}},
	})
	if err == nil {
		t.Fatal("InsertArticle() with unknown category code should fail")
	}

	art, err := db.GetByID("broken-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if art != nil {
		t.Error("partially inserted article visible after rollback")
	}
}

func TestInsertArticle_DuplicateID(t *testing.T) {
	db := testDB(t)
	seed(t, db)

	dup := testArticles()[0]
	if err := db.InsertArticle(dup); err == nil {
		t.Error("InsertArticle() with duplicate id should fail")
	}
}

func TestFilterIDs(t *testing.T) {
	db := testDB(t)
	seed(t, db)

	all := []string{"2101.00001v1", "1912.00002v2", "2203.00003v1"}

	tests := []struct {
		name    string
		ids     []string
		filters Filters
		want    []string
	}{
		{
			name:    "no constraints pass everything",
			ids:     all,
			filters: Filters{},
			want:    all,
		},
		{
			name:    "year from",
			ids:     all,
			filters: Filters{YearFrom: 2021},
			want:    []string{"2101.00001v1", "2203.00003v1"},
		},
		{
			name:    "year to",
			ids:     all,
			filters: Filters{YearTo: 2019},
			want:    []string{"1912.00002v2"},
		},
		{
			name:    "year range inclusive",
			ids:     all,
			filters: Filters{YearFrom: 2019, YearTo: 2021},
			want:    []string{"2101.00001v1", "1912.00002v2"},
		},
		{
			name:    "single category",
			ids:     all,
			filters: Filters{Categories: []string{"cs.LG"}},
			want:    []string{"1912.00002v2"},
		},
		{
			name:    "any of several categories",
			ids:     all,
			filters: Filters{Categories: []string{"cs.LG", "cs.IR"}},
			want:    []string{"2101.00001v1", "1912.00002v2"},
		},
		{
			name:    "category and year",
			ids:     all,
			filters: Filters{Categories: []string{"cs.LG", "cs.IR"}, YearFrom: 2021},
			want:    []string{"2101.00001v1"},
		},
		{
			name:    "article without categories fails category filter",
			ids:     []string{"2203.00003v1"},
			filters: Filters{Categories: []string{"cs.LG"}},
			want:    nil,
		},
		{
			name:    "no matches",
			ids:     all,
			filters: Filters{YearFrom: 2025},
			want:    nil,
		},
		{
			name:    "empty candidate set",
			ids:     nil,
			filters: Filters{YearFrom: 2020},
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pass, err := db.FilterIDs(tt.ids, tt.filters)
			if err != nil {
				t.Fatalf("FilterIDs() error = %v", err)
			}
			if len(pass) != len(tt.want) {
				t.Fatalf("got %d passing ids (%v), want %d", len(pass), pass, len(tt.want))
			}
			for _, id := range tt.want {
				if !pass[id] {
					t.Errorf("id %q missing from pass set", id)
				}
			}
		})
	}
}

// paddedIDs surrounds the known ids with enough unknown ones that the
// candidate set spans several id chunks, with the known ids landing in
// different chunks.
func paddedIDs(known []string) []string {
	n := 5*maxBatchIDs + 17
	stride := n / len(known)
	ids := make([]string, 0, n+len(known))
	for i := 0; i < n; i++ {
		if i%stride == 0 && i/stride < len(known) {
			ids = append(ids, known[i/stride])
		}
		ids = append(ids, fmt.Sprintf("ghost.%05d", i))
	}
	return ids
}

func TestFilterIDs_ChunksLargeCandidateSets(t *testing.T) {
	db := testDB(t)
	seed(t, db)

	ids := paddedIDs([]string{"2101.00001v1", "1912.00002v2", "2203.00003v1"})
	pass, err := db.FilterIDs(ids, Filters{YearFrom: 2021})
	if err != nil {
		t.Fatalf("FilterIDs() error = %v", err)
	}

	want := []string{"2101.00001v1", "2203.00003v1"}
	if len(pass) != len(want) {
		t.Fatalf("got %d passing ids (%v), want %d", len(pass), pass, len(want))
	}
	for _, id := range want {
		if !pass[id] {
			t.Errorf("id %q missing from pass set", id)
		}
	}
}

func TestGetByIDs_ChunksLargeBatches(t *testing.T) {
	db := testDB(t)
	seed(t, db)

	ids := paddedIDs([]string{"2203.00003v1", "2101.00001v1", "1912.00002v2"})
	arts, err := db.GetByIDs(ids)
	if err != nil {
		t.Fatalf("GetByIDs() error = %v", err)
	}
	if len(arts) != 3 {
		t.Fatalf("got %d articles, want 3", len(arts))
	}
	for _, art := range arts {
		if len(art.Authors) == 0 {
			t.Errorf("article %s has no authors joined", art.ID)
		}
	}
}

func TestListAll(t *testing.T) {
	db := testDB(t)
	seed(t, db)

	arts, err := db.ListAll()
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(arts) != 3 {
		t.Fatalf("got %d articles, want 3", len(arts))
	}

	// Ordered by id.
	want := []string{"1912.00002v2", "2101.00001v1", "2203.00003v1"}
	for i, id := range want {
		if arts[i].ID != id {
			t.Errorf("arts[%d].ID = %q, want %q", i, arts[i].ID, id)
		}
	}
	if len(arts[1].Authors) != 2 {
		t.Errorf("ListAll() should join authors, got %v", arts[1].Authors)
	}
}

func TestStats(t *testing.T) {
	db := testDB(t)
	seed(t, db)

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	if stats.Articles != 3 {
		t.Errorf("Articles = %d, want 3", stats.Articles)
	}
	if stats.Categories != 3 {
		t.Errorf("Categories = %d, want 3", stats.Categories)
	}
	wantYears := map[int]int{2021: 1, 2019: 1, 2022: 1}
	for year, n := range wantYears {
		if stats.ByYear[year] != n {
			t.Errorf("ByYear[%d] = %d, want %d", year, stats.ByYear[year], n)
		}
	}
}

func TestCount_Empty(t *testing.T) {
	db := testDB(t)

	count, err := db.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d, want 0", count)
	}
}
