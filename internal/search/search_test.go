package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"amol", "amoll", 1},
		{"same", "same", 0},
		{"café", "cafe", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.want, Levenshtein(tt.b, tt.a), "distance must be symmetric")
		})
	}
}

func TestLevenshtein_TriangleInequality(t *testing.T) {
	words := []string{"priya", "priyanka", "shashwat", "amol", "", "prya"}
	for _, a := range words {
		for _, b := range words {
			for _, c := range words {
				assert.LessOrEqual(t, Levenshtein(a, c), Levenshtein(a, b)+Levenshtein(b, c))
			}
		}
	}
}

type person struct {
	Name  string
	Phone string
}

var people = []person{
	{"Amol Sharma", "+917795957544"},
	{"Shashwat Jain", "+919122833772"},
	{"Priya", "+14155550123"},
}

var byName = []Field[person]{func(p person) string { return p.Name }}

func TestSearch_EmptyQueryReturnsAll(t *testing.T) {
	assert.Equal(t, people, Search(people, "", byName, DefaultThreshold))
	assert.Equal(t, people, Search(people, "   \t", byName, DefaultThreshold))
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"typo in short word", "amoll", []string{"Amol Sharma"}},
		{"substring is case-insensitive", "SHARMA", []string{"Amol Sharma"}},
		{"typo in longer word", "shashwt", []string{"Shashwat Jain"}},
		{"no match", "xyz", nil},
		{"shared substring", "a", []string{"Amol Sharma", "Shashwat Jain", "Priya"}},
		{"too many edits for short word", "pxxxa", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Search(people, tt.query, byName, DefaultThreshold)
			names := make([]string, 0, len(got))
			for _, p := range got {
				names = append(names, p.Name)
			}
			if tt.want == nil {
				assert.Empty(t, names)
				return
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestSearch_AnyField(t *testing.T) {
	fields := []Field[person]{
		func(p person) string { return p.Name },
		func(p person) string { return p.Phone },
	}
	got := Search(people, "9122833", fields, DefaultThreshold)
	assert.Len(t, got, 1)
	assert.Equal(t, "Shashwat Jain", got[0].Name)
}

func TestSearch_ThresholdCapsDistance(t *testing.T) {
	// "priyankxx" is two edits from "priyanka": allowed at 3, not at 0.
	items := []person{{Name: "Priyanka"}}
	assert.Len(t, Search(items, "priyankxx", byName, DefaultThreshold), 1)
	assert.Empty(t, Search(items, "priyankxx", byName, 0))
}

func TestSearch_DoesNotMutateInput(t *testing.T) {
	in := append([]person(nil), people...)
	_ = Search(in, "amol", byName, DefaultThreshold)
	assert.Equal(t, people, in)
}

func TestMatch(t *testing.T) {
	assert.True(t, Match([]string{"anything"}, " ", DefaultThreshold))
	assert.True(t, Match([]string{"", "Delhi office"}, "delhi", DefaultThreshold))
	assert.False(t, Match(nil, "delhi", DefaultThreshold))
}
