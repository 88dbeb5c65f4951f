package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/vcs-prompt/internal/domain"
)

func TestSelectBackend(t *testing.T) {
	tests := []struct {
		name     string
		loc      domain.RepoLocation
		override domain.BackendKind
		want     domain.BackendKind
		wantErr  error
	}{
		{
			name:    "neither present",
			loc:     domain.RepoLocation{Root: "/tmp"},
			wantErr: domain.ErrNotARepository,
		},
		{
			name: "git only",
			loc:  domain.RepoLocation{Root: "/r", GitPresent: true},
			want: domain.BackendGit,
		},
		{
			name: "jj only",
			loc:  domain.RepoLocation{Root: "/r", JJPresent: true},
			want: domain.BackendJJ,
		},
		{
			name: "colocated prefers jj",
			loc:  domain.RepoLocation{Root: "/r", GitPresent: true, JJPresent: true},
			want: domain.BackendJJ,
		},
		{
			name:     "colocated with git override",
			loc:      domain.RepoLocation{Root: "/r", GitPresent: true, JJPresent: true},
			override: domain.BackendGit,
			want:     domain.BackendGit,
		},
		{
			name:     "override to missing jj fails",
			loc:      domain.RepoLocation{Root: "/r", GitPresent: true},
			override: domain.BackendJJ,
			wantErr:  domain.ErrBackendUnavailable,
		},
		{
			name:     "override to missing git fails",
			loc:      domain.RepoLocation{Root: "/r", JJPresent: true},
			override: domain.BackendGit,
			wantErr:  domain.ErrBackendUnavailable,
		},
		{
			name:     "override on missing repository still reports not a repository",
			loc:      domain.RepoLocation{Root: "/tmp"},
			override: domain.BackendGit,
			wantErr:  domain.ErrNotARepository,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectBackend(tt.loc, tt.override)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newBackend() *mockBackend {
	return &mockBackend{
		mockGraph: linearGraph("A", "B", "C"),
		kind:      domain.BackendJJ,
		identity: &domain.WorkingCopyIdentity{
			ShortID: "yzxv1234",
			FullID:  "yzxv1234abcdefgh",
			Commit:  "C",
		},
		bookmarks: []domain.BookmarkRef{
			{Name: "main", Target: "A", HasRemote: true, RemoteTarget: "A"},
			{Name: "feat", Target: "B", HasRemote: true, RemoteTarget: "A", Unsynced: true},
		},
	}
}

func jjRepo() domain.RepoLocation {
	return domain.RepoLocation{Root: "/repo", JJPresent: true}
}

func TestStatusResolver_Resolve(t *testing.T) {
	backend := newBackend()
	factory := &mockFactory{backend: backend}
	resolver := NewStatusResolver(factory, &mockLogger{})

	result, err := resolver.Resolve(context.Background(), domain.ResolveInput{
		Location: jjRepo(),
		Options:  domain.ResolveOptions{MaxDepth: 10, DisplayLimit: 3},
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, domain.BackendJJ, result.Kind)
	assert.Equal(t, "/repo", result.Root)
	assert.Equal(t, "yzxv1234", result.Identity.ShortID)
	assert.Equal(t, []string{"feat~1", "main~2"}, result.Bookmarks)
	assert.Equal(t, []string{"feat", "main"}, names(result.Resolved))

	require.NotNil(t, backend.gotClosest)
	assert.Equal(t, "feat", backend.gotClosest.Bookmark.Name)
	assert.Equal(t, domain.JJStatus{Unsynced: true}, result.Status)

	assert.Equal(t, domain.BackendJJ, factory.openKind)
	assert.Equal(t, "/repo", factory.openRoot)
	assert.True(t, backend.closeCalled)
}

func TestStatusResolver_Resolve_NoBookmarks(t *testing.T) {
	backend := newBackend()
	backend.bookmarks = nil
	backend.identity.Conflicted = true
	resolver := NewStatusResolver(&mockFactory{backend: backend}, &mockLogger{})

	result, err := resolver.Resolve(context.Background(), domain.ResolveInput{
		Location: jjRepo(),
		Options:  domain.ResolveOptions{MaxDepth: 10},
	})

	require.NoError(t, err)
	assert.Empty(t, result.Resolved)
	assert.Empty(t, result.Bookmarks)
	assert.Nil(t, backend.gotClosest)
	assert.Equal(t, domain.JJStatus{Conflicted: true}, result.Status)
}

func TestStatusResolver_Resolve_EmptyRepository(t *testing.T) {
	backend := newBackend()
	backend.identity = &domain.WorkingCopyIdentity{Empty: true}
	backend.bookmarks = nil
	resolver := NewStatusResolver(&mockFactory{backend: backend}, &mockLogger{})

	result, err := resolver.Resolve(context.Background(), domain.ResolveInput{
		Location: jjRepo(),
		Options:  domain.ResolveOptions{MaxDepth: 10},
	})

	require.NoError(t, err)
	assert.Empty(t, result.Resolved)
	assert.Empty(t, result.Identity.FullID)
	assert.Equal(t, domain.JJStatus{}, result.Status)
}

func TestStatusResolver_Resolve_ZeroDepth(t *testing.T) {
	backend := newBackend()
	backend.bookmarks = append(backend.bookmarks, domain.BookmarkRef{Name: "pr-3", Target: "C"})
	resolver := NewStatusResolver(&mockFactory{backend: backend}, &mockLogger{})

	result, err := resolver.Resolve(context.Background(), domain.ResolveInput{
		Location: jjRepo(),
		Options:  domain.ResolveOptions{MaxDepth: 0},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"pr-3"}, result.Bookmarks)
	assert.Empty(t, backend.parentCall)
}

func TestStatusResolver_Resolve_Idempotent(t *testing.T) {
	resolver := NewStatusResolver(&mockFactory{backend: newBackend()}, &mockLogger{})
	input := domain.ResolveInput{
		Location: jjRepo(),
		Options:  domain.ResolveOptions{MaxDepth: 10, DisplayLimit: 1},
	}

	first, err := resolver.Resolve(context.Background(), input)
	require.NoError(t, err)
	second, err := resolver.Resolve(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestStatusResolver_Resolve_Errors(t *testing.T) {
	tests := []struct {
		name       string
		loc        domain.RepoLocation
		mutate     func(b *mockBackend, f *mockFactory)
		wantErr    error
		wantErrMsg string
		wantClosed bool
	}{
		{
			name:    "not a repository",
			loc:     domain.RepoLocation{Root: "/tmp"},
			mutate:  func(_ *mockBackend, _ *mockFactory) {},
			wantErr: domain.ErrNotARepository,
		},
		{
			name: "open fails",
			loc:  jjRepo(),
			mutate: func(_ *mockBackend, f *mockFactory) {
				f.openErr = errors.New("jj not installed")
			},
			wantErr:    domain.ErrBackendFailure,
			wantErrMsg: "open jj repository",
		},
		{
			name: "identity fails",
			loc:  jjRepo(),
			mutate: func(b *mockBackend, _ *mockFactory) {
				b.identityErr = errors.New("corrupt op log")
			},
			wantErr:    domain.ErrBackendFailure,
			wantErrMsg: "query identity",
			wantClosed: true,
		},
		{
			name: "bookmark enumeration fails",
			loc:  jjRepo(),
			mutate: func(b *mockBackend, _ *mockFactory) {
				b.bookmarksErr = errors.New("unreadable view")
			},
			wantErr:    domain.ErrBackendFailure,
			wantErrMsg: "enumerate bookmarks",
			wantClosed: true,
		},
		{
			name: "graph walk fails",
			loc:  jjRepo(),
			mutate: func(b *mockBackend, _ *mockFactory) {
				b.failOn = "C"
			},
			wantErr:    domain.ErrBackendFailure,
			wantErrMsg: "resolve ancestors",
			wantClosed: true,
		},
		{
			name: "status fails",
			loc:  jjRepo(),
			mutate: func(b *mockBackend, _ *mockFactory) {
				b.statusErr = errors.New("index locked")
			},
			wantErr:    domain.ErrBackendFailure,
			wantErrMsg: "derive status",
			wantClosed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newBackend()
			factory := &mockFactory{backend: backend}
			tt.mutate(backend, factory)
			resolver := NewStatusResolver(factory, &mockLogger{})

			result, err := resolver.Resolve(context.Background(), domain.ResolveInput{
				Location: tt.loc,
				Options:  domain.ResolveOptions{MaxDepth: 10},
			})

			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantErrMsg != "" {
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			}
			assert.Equal(t, tt.wantClosed, backend.closeCalled)
		})
	}
}
