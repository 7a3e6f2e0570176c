package filex

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureDataDir_CreatesExplicitDir(t *testing.T) {
	want := filepath.Join(t.TempDir(), "a", "b")

	got, err := EnsureDataDir(want, "anymind")
	require.NoError(t, err)
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir())
}

func TestEnsureDataDir_DefaultsToUserConfigDir(t *testing.T) {
	base := t.TempDir()
	old := userConfigDir
	userConfigDir = func() (string, error) { return base, nil }
	t.Cleanup(func() { userConfigDir = old })

	got, err := EnsureDataDir("", "anymind")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(base, "anymind"), got)
}

func TestEnsureDataDir_UserConfigDirError(t *testing.T) {
	old := userConfigDir
	userConfigDir = func() (string, error) { return "", errors.New("no home") }
	t.Cleanup(func() { userConfigDir = old })

	_, err := EnsureDataDir("", "anymind")
	require.Error(t, err)
}

func TestEnsureDataDir_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := EnsureDataDir("~/notes", "anymind")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, "notes"), got)
}

func TestEnsureDataDir_FailsWhenPathIsFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o600))

	_, err := EnsureDataDir(filepath.Join(f, "sub"), "anymind")
	require.Error(t, err)
}
