package usecases

import (
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/MyCarrier-DevOps/vcs-prompt/internal/domain"
)

func match(name string, distance int) domain.AncestorMatch {
	return domain.AncestorMatch{Bookmark: domain.BookmarkRef{Name: name}, Distance: distance}
}

func TestRenderBookmarks(t *testing.T) {
	tests := []struct {
		name    string
		matches []domain.AncestorMatch
		opts    SelectionOptions
		want    []string
	}{
		{
			name:    "ancestor bookmark gets distance suffix",
			matches: []domain.AncestorMatch{match("main", 2)},
			want:    []string{"main~2"},
		},
		{
			name:    "limit larger than set shows everything without marker",
			matches: []domain.AncestorMatch{match("pr-3", 0), match("main", 5)},
			opts:    SelectionOptions{DisplayLimit: 3},
			want:    []string{"pr-3", "main~5"},
		},
		{
			name: "overflow marker carries hidden count",
			matches: []domain.AncestorMatch{
				match("main", 0), match("feat/foo", 1), match("feat/bar", 2),
				match("staging", 3), match("develop", 4),
			},
			opts: SelectionOptions{DisplayLimit: 2},
			want: []string{"main", "feat/foo~1", "…+3"},
		},
		{
			name:    "limit equal to count has no marker",
			matches: []domain.AncestorMatch{match("main", 0), match("feat", 1)},
			opts:    SelectionOptions{DisplayLimit: 2},
			want:    []string{"main", "feat~1"},
		},
		{
			name:    "limit one",
			matches: []domain.AncestorMatch{match("main", 0), match("feat", 1), match("other", 2)},
			opts:    SelectionOptions{DisplayLimit: 1},
			want:    []string{"main", "…+2"},
		},
		{
			name: "zero limit is unlimited",
			matches: []domain.AncestorMatch{
				match("a", 0), match("b", 1), match("c", 2), match("d", 3),
			},
			want: []string{"a", "b~1", "c~2", "d~3"},
		},
		{
			name:    "strip single prefix",
			matches: []domain.AncestorMatch{match("dmmulroy/feat-x", 0)},
			opts:    SelectionOptions{StripPrefixes: []string{"dmmulroy/"}},
			want:    []string{"feat-x"},
		},
		{
			name: "strip multiple prefixes",
			matches: []domain.AncestorMatch{
				match("dmmulroy/feat-x", 0), match("acme-team/fix-y", 1), match("staging", 2),
			},
			opts: SelectionOptions{StripPrefixes: []string{"dmmulroy/", "acme-team/"}},
			want: []string{"feat-x", "fix-y~1", "staging~2"},
		},
		{
			name:    "longest matching prefix wins",
			matches: []domain.AncestorMatch{match("team/alice/feat", 0)},
			opts:    SelectionOptions{StripPrefixes: []string{"team/", "team/alice/"}},
			want:    []string{"feat"},
		},
		{
			name:    "truncate keeps suffix",
			matches: []domain.AncestorMatch{match("very-long-bookmark-name", 3)},
			opts:    SelectionOptions{TruncateLength: 5},
			want:    []string{"very…~3"},
		},
		{
			name:    "strip happens before truncation",
			matches: []domain.AncestorMatch{match("dmmulroy/very-long-feature-name", 0)},
			opts:    SelectionOptions{TruncateLength: 10, StripPrefixes: []string{"dmmulroy/"}},
			want:    []string{"very-long…"},
		},
		{
			name: "empty set",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderBookmarks(tt.matches, tt.opts))
		})
	}
}

func TestRenderBookmarks_OverflowLaw(t *testing.T) {
	var matches []domain.AncestorMatch
	for i := 0; i < 7; i++ {
		matches = append(matches, match("b"+strconv.Itoa(i), i))
	}

	for limit := 1; limit < len(matches); limit++ {
		got := RenderBookmarks(matches, SelectionOptions{DisplayLimit: limit})

		assert.Len(t, got, limit+1)
		assert.Equal(t, "…+"+strconv.Itoa(len(matches)-limit), got[len(got)-1])
	}
}

func TestRenderBookmarks_TruncationLaw(t *testing.T) {
	matches := []domain.AncestorMatch{
		match("short", 0),
		match("a-rather-long-name", 1),
		match("ünïcödé-bookmark", 12),
	}

	for _, limit := range []int{1, 3, 6, 20} {
		for i, label := range RenderBookmarks(matches, SelectionOptions{TruncateLength: limit}) {
			name := label
			if matches[i].Distance > 0 {
				suffix := "~" + strconv.Itoa(matches[i].Distance)
				assert.True(t, strings.HasSuffix(label, suffix))
				name = strings.TrimSuffix(label, suffix)
			}
			assert.LessOrEqual(t, utf8.RuneCountInString(name), limit)
		}
	}

	full := RenderBookmarks(matches, SelectionOptions{})
	assert.Equal(t, []string{"short", "a-rather-long-name~1", "ünïcödé-bookmark~12"}, full)
}

func TestStripPrefix(t *testing.T) {
	assert.Equal(t, "feat", StripPrefix("feat", []string{"x/"}))
	assert.Equal(t, "feat", StripPrefix("x/feat", []string{"", "x/"}))
	assert.Equal(t, "x/feat", StripPrefix("x/feat", nil))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{in: "main", limit: 0, want: "main"},
		{in: "main", limit: 4, want: "main"},
		{in: "main", limit: 3, want: "ma…"},
		{in: "main", limit: 1, want: "…"},
		{in: "äöüß", limit: 3, want: "äö…"},
	}

	for _, tt := range tests {
		t.Run(tt.in+"/"+strconv.Itoa(tt.limit), func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.limit))
		})
	}
}
