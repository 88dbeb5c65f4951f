package usecases

import (
	"cmp"
	"context"
	"iter"
	"slices"

	"github.com/MyCarrier-DevOps/vcs-prompt/internal/domain"
)

// Ancestor is one step of an ancestor walk.
type Ancestor struct {
	Commit domain.CommitID
	Depth  int
}

// Ancestors walks the graph breadth-first from start.
// It yields start at depth 0, then every strict ancestor once, at its minimum depth,
// up to maxDepth inclusive. Parents of a boundary commit are not visited.
// A parent lookup error is yielded once and ends the walk.
func Ancestors(
	ctx context.Context,
	graph domain.CommitGraph,
	start domain.CommitID,
	maxDepth int,
) iter.Seq2[Ancestor, error] {
	return func(yield func(Ancestor, error) bool) {
		if start == "" {
			return
		}
		boundary, _ := graph.(domain.TraversalBoundary)

		visited := map[domain.CommitID]struct{}{start: {}}
		queue := []Ancestor{{Commit: start}}

		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]

			if !yield(cur, nil) {
				return
			}
			if cur.Depth >= maxDepth {
				continue
			}
			if boundary != nil && boundary.IsBoundary(cur.Commit) {
				continue
			}

			parents, err := graph.Parents(ctx, cur.Commit)
			if err != nil {
				yield(Ancestor{}, err)
				return
			}
			for _, p := range parents {
				if _, seen := visited[p]; seen {
					continue
				}
				visited[p] = struct{}{}
				queue = append(queue, Ancestor{Commit: p, Depth: cur.Depth + 1})
			}
		}
	}
}

// ResolveAncestors finds every bookmark whose target is the working copy or one of its
// ancestors within maxDepth hops. The result is sorted by distance, then name, with a
// single entry per bookmark name.
func ResolveAncestors(
	ctx context.Context,
	graph domain.CommitGraph,
	workingCopy domain.CommitID,
	bookmarks []domain.BookmarkRef,
	maxDepth int,
) ([]domain.AncestorMatch, error) {
	if workingCopy == "" || len(bookmarks) == 0 {
		return nil, nil
	}
	if maxDepth < 0 {
		maxDepth = 0
	}

	pending := make(map[domain.CommitID]struct{}, len(bookmarks))
	for _, b := range bookmarks {
		pending[b.Target] = struct{}{}
	}

	depths := make(map[domain.CommitID]int)
	for step, err := range Ancestors(ctx, graph, workingCopy, maxDepth) {
		if err != nil {
			return nil, err
		}
		depths[step.Commit] = step.Depth
		delete(pending, step.Commit)
		if len(pending) == 0 {
			break
		}
	}

	best := make(map[string]domain.AncestorMatch, len(bookmarks))
	for _, b := range bookmarks {
		d, ok := depths[b.Target]
		if !ok {
			continue
		}
		if prev, seen := best[b.Name]; seen {
			if prev.Distance < d || (prev.Distance == d && prev.Bookmark.Target <= b.Target) {
				continue
			}
		}
		best[b.Name] = domain.AncestorMatch{Bookmark: b, Distance: d}
	}

	matches := make([]domain.AncestorMatch, 0, len(best))
	for _, m := range best {
		matches = append(matches, m)
	}
	SortMatches(matches)
	return matches, nil
}

// SortMatches orders matches by distance, ties broken by bookmark name.
func SortMatches(matches []domain.AncestorMatch) {
	slices.SortStableFunc(matches, func(a, b domain.AncestorMatch) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Bookmark.Name, b.Bookmark.Name)
	})
}
