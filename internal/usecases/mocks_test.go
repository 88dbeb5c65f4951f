package usecases

import (
	"context"
	"errors"

	"github.com/MyCarrier-DevOps/vcs-prompt/internal/domain"
)

// mockLogger implements the Logger interface for testing.
type mockLogger struct{}

func (m *mockLogger) Info(_ context.Context, _ string, _ map[string]interface{})           {}
func (m *mockLogger) Debug(_ context.Context, _ string, _ map[string]interface{})          {}
func (m *mockLogger) Warn(_ context.Context, _ string, _ map[string]interface{})           {}
func (m *mockLogger) Error(_ context.Context, _ string, _ error, _ map[string]interface{}) {}

// mockGraph is an in-memory commit graph keyed by commit id.
type mockGraph struct {
	parents    map[domain.CommitID][]domain.CommitID
	boundary   map[domain.CommitID]bool
	failOn     domain.CommitID
	parentCall []domain.CommitID
}

func (g *mockGraph) Parents(_ context.Context, c domain.CommitID) ([]domain.CommitID, error) {
	g.parentCall = append(g.parentCall, c)
	if c == g.failOn {
		return nil, errors.New("object not found")
	}
	return g.parents[c], nil
}

// boundaryGraph adds TraversalBoundary to mockGraph.
type boundaryGraph struct {
	*mockGraph
}

func (g boundaryGraph) IsBoundary(c domain.CommitID) bool {
	return g.boundary[c]
}

// linearGraph builds ids[0] <- ids[1] <- ... where the last id is the working copy.
func linearGraph(ids ...domain.CommitID) *mockGraph {
	g := &mockGraph{parents: map[domain.CommitID][]domain.CommitID{}}
	for i := 1; i < len(ids); i++ {
		g.parents[ids[i]] = []domain.CommitID{ids[i-1]}
	}
	return g
}

// mockBackend implements domain.Backend for testing.
type mockBackend struct {
	*mockGraph
	kind         domain.BackendKind
	identity     *domain.WorkingCopyIdentity
	identityErr  error
	bookmarks    []domain.BookmarkRef
	bookmarksErr error
	statusErr    error
	gotClosest   *domain.AncestorMatch
	closeCalled  bool
}

func (m *mockBackend) Kind() domain.BackendKind { return m.kind }

func (m *mockBackend) Identity(_ context.Context) (*domain.WorkingCopyIdentity, error) {
	if m.identityErr != nil {
		return nil, m.identityErr
	}
	return m.identity, nil
}

func (m *mockBackend) Bookmarks(_ context.Context) ([]domain.BookmarkRef, error) {
	return m.bookmarks, m.bookmarksErr
}

func (m *mockBackend) Status(
	_ context.Context,
	identity *domain.WorkingCopyIdentity,
	closest *domain.AncestorMatch,
) (domain.StatusFlags, error) {
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	m.gotClosest = closest
	s := domain.JJStatus{Conflicted: identity.Conflicted}
	if closest != nil {
		s.Unsynced = closest.Bookmark.Unsynced
	}
	return s, nil
}

func (m *mockBackend) Close() error {
	m.closeCalled = true
	return nil
}

// mockFactory implements domain.BackendFactory for testing.
type mockFactory struct {
	backend  *mockBackend
	openErr  error
	openKind domain.BackendKind
	openRoot string
}

func (f *mockFactory) Open(
	_ context.Context,
	kind domain.BackendKind,
	root string,
	_ domain.ResolveOptions,
) (domain.Backend, error) {
	f.openKind = kind
	f.openRoot = root
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.backend, nil
}
