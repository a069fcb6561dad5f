package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveWritesAndOverwrites(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := New(filepath.Join(dir, "data"), nil)
	require.NoError(t, err)

	path, err := w.Save("<html>first</html>")
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "<html>first</html>", string(got))

	_, err = w.Save("<html>second</html>")
	require.NoError(t, err)
	got, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "<html>second</html>", string(got))
}

func TestNewRequiresDir(t *testing.T) {
	t.Parallel()

	_, err := New("", nil)
	require.Error(t, err)
}
