package ui

import (
	"reflect"
	"testing"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		s1       string
		s2       string
		expected int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"psts", "posts", 1},
		{"athor", "author", 1},
		{"psts", "tags", 3},
	}

	for _, tt := range tests {
		t.Run(tt.s1+"_"+tt.s2, func(t *testing.T) {
			result := LevenshteinDistance(tt.s1, tt.s2)
			if result != tt.expected {
				t.Errorf("LevenshteinDistance(%q, %q) = %d; want %d", tt.s1, tt.s2, result, tt.expected)
			}
		})
	}
}

func TestFindSimilar(t *testing.T) {
	candidates := []string{"comments", "posts", "tags", "users"}

	tests := []struct {
		name     string
		target   string
		opts     *FuzzyMatchOptions
		expected []string
	}{
		{
			name:     "closest first then candidate order",
			target:   "psts",
			opts:     nil,
			expected: []string{"posts", "tags", "users"},
		},
		{
			name:     "tighter distance",
			target:   "psts",
			opts:     &FuzzyMatchOptions{MaxDistance: 1},
			expected: []string{"posts"},
		},
		{
			name:     "case insensitive",
			target:   "POSTS",
			opts:     nil,
			expected: []string{"posts"},
		},
		{
			name:     "case sensitive",
			target:   "POSTS",
			opts:     &FuzzyMatchOptions{MaxDistance: 2, CaseSensitive: true},
			expected: []string{},
		},
		{
			name:     "max suggestions limit",
			target:   "psts",
			opts:     &FuzzyMatchOptions{MaxSuggestions: 2},
			expected: []string{"posts", "tags"},
		},
		{
			name:     "no match too far",
			target:   "xyz",
			opts:     nil,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindSimilar(tt.target, candidates, tt.opts)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("FindSimilar(%q) = %v; want %v", tt.target, result, tt.expected)
			}
		})
	}
}

func TestFindSimilarEmptyCandidates(t *testing.T) {
	result := FindSimilar("test", []string{}, nil)
	if len(result) != 0 {
		t.Errorf("Expected empty result for empty candidates, got %v", result)
	}
}
