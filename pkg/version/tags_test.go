package version

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initTestRepo creates a throwaway git repository with one commit.
func initTestRepo(t *testing.T) string {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		output, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, string(output))
	}

	run("init")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("test"), 0644))
	run("add", "README")
	run("commit", "-m", "initial")

	return dir
}

func TestRepo_Tags(t *testing.T) {
	dir := initTestRepo(t)
	repo := NewRepo(dir)

	tags, err := repo.Tags()
	require.NoError(t, err)
	assert.Empty(t, tags)

	require.NoError(t, repo.CreateTag("v1.0.0", "release 1.0.0"))
	require.NoError(t, repo.CreateTag("v1.1.0", "release 1.1.0"))

	tags, err = repo.Tags()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"v1.0.0", "v1.1.0"}, tags)
}

func TestRepo_CurrentVersion(t *testing.T) {
	dir := initTestRepo(t)
	repo := NewRepo(dir)

	// No tags yet: start from zero.
	current, err := repo.CurrentVersion("v")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0", current)

	require.NoError(t, repo.CreateTag("v0.9.0", "release"))
	require.NoError(t, repo.CreateTag("v0.10.0", "release"))
	require.NoError(t, repo.CreateTag("nightly", "not a version"))

	current, err = repo.CurrentVersion("v")
	require.NoError(t, err)
	assert.Equal(t, "0.10.0", current)
}

func TestRepo_CreateTag_Duplicate(t *testing.T) {
	dir := initTestRepo(t)
	repo := NewRepo(dir)

	require.NoError(t, repo.CreateTag("v1.0.0", "release"))
	assert.Error(t, repo.CreateTag("v1.0.0", "again"))
}

func TestRepo_Tags_NotARepo(t *testing.T) {
	repo := NewRepo(t.TempDir())
	_, err := repo.Tags()
	assert.Error(t, err)
}
