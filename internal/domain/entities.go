// Package domain defines the core business entities and interfaces for vcs-prompt.
package domain

import (
	"fmt"
	"strings"
)

// BackendKind identifies the version-control backend that produced a result.
type BackendKind string

const (
	// BackendGit is the classic, index-based backend.
	BackendGit BackendKind = "git"

	// BackendJJ is the change-centric Jujutsu backend.
	BackendJJ BackendKind = "jj"
)

// ParseBackendKind converts a configuration string into a BackendKind.
// The empty string is accepted and means "no preference".
func ParseBackendKind(s string) (BackendKind, error) {
	switch BackendKind(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return "", nil
	case BackendGit:
		return BackendGit, nil
	case BackendJJ:
		return BackendJJ, nil
	default:
		return "", fmt.Errorf("unknown backend %q (expected %q or %q)", s, BackendGit, BackendJJ)
	}
}

// CommitID is an opaque handle to a commit in a backend's graph.
// Git uses the full SHA, jj uses the commit id hex.
type CommitID string

// RepoLocation is what the repository locator found for a starting path.
type RepoLocation struct {
	// Root is the directory holding the repository metadata.
	Root string

	// GitPresent is true when Root contains a .git directory or file.
	GitPresent bool

	// JJPresent is true when Root contains a .jj directory.
	JJPresent bool
}

// Colocated reports whether both backends share the same root.
func (l RepoLocation) Colocated() bool {
	return l.GitPresent && l.JJPresent
}

// WorkingCopyIdentity identifies the working-copy position.
type WorkingCopyIdentity struct {
	// ShortID is FullID truncated to the configured display length.
	ShortID string

	// FullID is the commit hash (git) or change id (jj).
	FullID string

	// UniquePrefixLen is the length of the shortest unique prefix of ShortID.
	// Only jj fills it; zero disables prefix highlighting.
	UniquePrefixLen int

	// Commit is the working-copy commit used as the ancestor search start.
	Commit CommitID

	// Conflicted is true when the working copy has unresolved conflicts.
	Conflicted bool

	// Empty marks a repository without any commit yet.
	Empty bool
}

// ShortID returns the first n bytes of an identifier, clamped to its length.
// A non-positive n keeps the full identifier.
func ShortID(full string, n int) string {
	if n <= 0 || n >= len(full) {
		return full
	}
	return full[:n]
}

// BookmarkRef is a named reference (git branch, jj bookmark) and its remote state.
type BookmarkRef struct {
	Name   string
	Target CommitID

	// HasRemote is true when a remote tracking ref exists for the bookmark.
	HasRemote bool

	// RemoteTarget is the commit of the remote tracking ref, if any.
	RemoteTarget CommitID

	// Unsynced is true when the remote tracking target differs from Target.
	Unsynced bool
}

// AncestorMatch is a bookmark found at Distance parent hops above the working copy.
type AncestorMatch struct {
	Bookmark BookmarkRef
	Distance int
}

// ResolverResult is the backend-agnostic outcome of one resolution.
type ResolverResult struct {
	Kind     BackendKind
	Root     string
	Identity WorkingCopyIdentity

	// Resolved is ordered by distance, then name.
	Resolved []AncestorMatch

	// Bookmarks holds the rendered labels produced by the selection policy.
	Bookmarks []string

	Status StatusFlags
}

// Closest returns the match status is derived from, or nil when nothing resolved.
func (r *ResolverResult) Closest() *AncestorMatch {
	if len(r.Resolved) == 0 {
		return nil
	}
	return &r.Resolved[0]
}

// StatusFlags is the backend-specific status of the working copy.
// The set of implementations is closed: GitStatus and JJStatus.
type StatusFlags interface {
	Kind() BackendKind
	isStatusFlags()
}

// GitStatus holds classic backend status flags.
type GitStatus struct {
	Conflicted bool
	Staged     bool
	Modified   bool
	Untracked  bool
	Deleted    bool

	// Ahead and Behind are relative to the closest bookmark's remote target.
	Ahead  int
	Behind int
}

// Kind implements StatusFlags.
func (GitStatus) Kind() BackendKind { return BackendGit }

func (GitStatus) isStatusFlags() {}

// JJStatus holds change-centric backend status flags.
type JJStatus struct {
	Conflicted       bool
	EmptyDescription bool
	Divergent        bool

	// Unsynced is true when the closest bookmark differs from its remote.
	Unsynced bool
}

// Kind implements StatusFlags.
func (JJStatus) Kind() BackendKind { return BackendJJ }

func (JJStatus) isStatusFlags() {}

// ResolveOptions is the resolved configuration consumed by the core.
type ResolveOptions struct {
	// MaxDepth bounds the ancestor search. Zero only matches the working copy itself.
	MaxDepth int `yaml:"ancestor_bookmark_depth"`

	// DisplayLimit caps the rendered bookmarks. Zero means unlimited.
	DisplayLimit int `yaml:"bookmarks_display_limit"`

	// TruncateLength caps each bookmark name. Zero means unlimited.
	TruncateLength int `yaml:"truncate_name"`

	// IDLength is the displayed identity length.
	IDLength int `yaml:"id_length"`

	// StripPrefixes are removed from bookmark names before display.
	StripPrefixes []string `yaml:"strip_bookmark_prefix"`

	// Backend forces a backend when set.
	Backend BackendKind `yaml:"backend,omitempty"`
}

// ResolveInput contains the parameters for one resolution.
type ResolveInput struct {
	Location RepoLocation
	Options  ResolveOptions
}

// DisplayFlags toggles the parts of the prompt line for one backend.
type DisplayFlags struct {
	ShowPrefix      bool `yaml:"show_prefix"`
	ShowName        bool `yaml:"show_name"`
	ShowID          bool `yaml:"show_id"`
	ShowStatus      bool `yaml:"show_status"`
	ShowColor       bool `yaml:"show_color"`
	ShowPrefixColor bool `yaml:"show_prefix_color"`
}

// AllVisible returns flags with every part shown.
func AllVisible() DisplayFlags {
	return DisplayFlags{
		ShowPrefix:      true,
		ShowName:        true,
		ShowID:          true,
		ShowStatus:      true,
		ShowColor:       true,
		ShowPrefixColor: true,
	}
}

// DisplayOptions configures output styling.
type DisplayOptions struct {
	JJSymbol  string       `yaml:"jj_symbol"`
	GitSymbol string       `yaml:"git_symbol"`
	JJ        DisplayFlags `yaml:"jj"`
	Git       DisplayFlags `yaml:"git"`
}

// Symbol returns the prompt symbol for kind.
func (d DisplayOptions) Symbol(kind BackendKind) string {
	if kind == BackendJJ {
		return d.JJSymbol
	}
	return d.GitSymbol
}

// Flags returns the display flags for kind.
func (d DisplayOptions) Flags(kind BackendKind) DisplayFlags {
	if kind == BackendJJ {
		return d.JJ
	}
	return d.Git
}

// Defaults.
const (
	DefaultAncestorDepth = 10
	DefaultDisplayLimit  = 3
	DefaultIDLength      = 8
	DefaultJJSymbol      = "󱗆 "
	DefaultGitSymbol     = "\ue0a0 "
)
