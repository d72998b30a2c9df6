//go:build !sqlite_fts5

package index

import "testing"

func TestLikePattern(t *testing.T) {
	cases := map[string]string{
		"App":     "%App%",
		"a_b":     `%a\_b%`,
		"100%":    `%100\%%`,
		`dir\sub`: `%dir\\sub%`,
	}
	for in, want := range cases {
		if got := likePattern(in); got != want {
			t.Errorf("likePattern(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSearch_WildcardsAreLiteral(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertProject(row("under.proj", "lib_core", "static-library", "1"), files("src/lib_core.c"), nil)
	_ = db.UpsertProject(row("plain.proj", "libxcore", "static-library", "2"), files("src/libxcore.c"), nil)
	_ = db.UpsertProject(row("pct.proj", "Meter", "application", "3"), files("res/100%.png"), nil)

	results, err := db.Search("lib_core", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "under.proj" {
		t.Errorf("underscore search = %+v, want only under.proj", results)
	}

	results, err = db.Search("%", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "pct.proj" || results[0].Snippet != "res/100%.png" {
		t.Errorf("percent search = %+v, want only pct.proj", results)
	}
}
