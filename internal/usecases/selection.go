package usecases

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/MyCarrier-DevOps/vcs-prompt/internal/domain"
)

// Ellipsis marks truncated names and the overflow entry.
const Ellipsis = "…"

// SelectionOptions controls how resolved bookmarks are rendered.
type SelectionOptions struct {
	DisplayLimit   int
	TruncateLength int
	StripPrefixes  []string
}

// RenderBookmarks turns an ordered match set into display labels.
// Labels keep the input order; when DisplayLimit hides entries a final "…+N"
// label carries the number of hidden matches.
func RenderBookmarks(matches []domain.AncestorMatch, opts SelectionOptions) []string {
	if len(matches) == 0 {
		return nil
	}

	show := len(matches)
	if opts.DisplayLimit > 0 && opts.DisplayLimit < show {
		show = opts.DisplayLimit
	}

	out := make([]string, 0, show+1)
	for _, m := range matches[:show] {
		name := Truncate(StripPrefix(m.Bookmark.Name, opts.StripPrefixes), opts.TruncateLength)
		if m.Distance > 0 {
			name += "~" + strconv.Itoa(m.Distance)
		}
		out = append(out, name)
	}

	if hidden := len(matches) - show; hidden > 0 {
		out = append(out, Ellipsis+"+"+strconv.Itoa(hidden))
	}
	return out
}

// StripPrefix removes the longest prefix in prefixes that name starts with.
func StripPrefix(name string, prefixes []string) string {
	longest := ""
	for _, p := range prefixes {
		if p != "" && len(p) > len(longest) && strings.HasPrefix(name, p) {
			longest = p
		}
	}
	return name[len(longest):]
}

// Truncate shortens name to at most limit runes, the last one being an ellipsis.
// A limit of zero leaves the name unchanged.
func Truncate(name string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(name) <= limit {
		return name
	}
	runes := []rune(name)
	return string(runes[:limit-1]) + Ellipsis
}
