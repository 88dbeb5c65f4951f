package backend

import (
	"context"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/vcs-prompt/internal/adapters/git"
	"github.com/MyCarrier-DevOps/vcs-prompt/internal/adapters/jj"
	"github.com/MyCarrier-DevOps/vcs-prompt/internal/domain"
)

type noopLogger struct{}

func (noopLogger) Debug(_ context.Context, _ string, _ map[string]interface{}) {}
func (noopLogger) Warn(_ context.Context, _ string, _ map[string]interface{})  {}

type stubRunner struct{}

func (stubRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	return []byte("zzzz1234zzzz\tabc\tz\t0\t0\t0\n"), nil
}

func TestFactory_OpenJJ(t *testing.T) {
	f := NewFactory(noopLogger{}, stubRunner{})

	b, err := f.Open(context.Background(), domain.BackendJJ, "/repo", domain.ResolveOptions{IDLength: 4})

	require.NoError(t, err)
	assert.IsType(t, &jj.Repository{}, b)
	assert.Equal(t, domain.BackendJJ, b.Kind())

	id, err := b.Identity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "zzzz", id.ShortID)
}

func TestFactory_OpenGit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	cmd := exec.Command("git", "init", dir)
	cmd.Env = append(os.Environ(), "GIT_CONFIG_NOSYSTEM=1")
	require.NoError(t, cmd.Run())

	f := NewFactory(noopLogger{}, nil)
	b, err := f.Open(context.Background(), domain.BackendGit, dir, domain.ResolveOptions{})

	require.NoError(t, err)
	defer b.Close()
	assert.IsType(t, &git.GoGitRepository{}, b)
	assert.Equal(t, domain.BackendGit, b.Kind())
}

func TestFactory_OpenGit_NotARepository(t *testing.T) {
	f := NewFactory(noopLogger{}, nil)

	_, err := f.Open(context.Background(), domain.BackendGit, t.TempDir(), domain.ResolveOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotARepository)
}

func TestFactory_OpenUnknown(t *testing.T) {
	f := NewFactory(noopLogger{}, nil)

	_, err := f.Open(context.Background(), domain.BackendKind("hg"), "/repo", domain.ResolveOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}
