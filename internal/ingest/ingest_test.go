package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestCollectDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.pdf"), "b")
	writeFile(t, filepath.Join(root, "a.PDF"), "a")
	writeFile(t, filepath.Join(root, "notes.txt"), "n")
	writeFile(t, filepath.Join(root, ".hidden.pdf"), "h")
	writeFile(t, filepath.Join(root, ".cache", "c.pdf"), "c")
	writeFile(t, filepath.Join(root, "sub", "d.pdf"), "d")

	paths, stats, err := CollectDirectory(context.Background(), root, true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.PDF"),
		filepath.Join(root, "b.pdf"),
		filepath.Join(root, "sub", "d.pdf"),
	}, paths)
	assert.Equal(t, uint32(4), stats.Scanned)
	assert.Equal(t, uint32(3), stats.Matched)

	all, _, err := CollectDirectory(context.Background(), root, false)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestCollectDirectoryRequiresRoot(t *testing.T) {
	_, _, err := CollectDirectory(context.Background(), " ", true)
	assert.Error(t, err)
}

func TestLoaderLoad(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "papers")
	writeFile(t, filepath.Join(dir, "one.pdf"), "%PDF-1")
	writeFile(t, filepath.Join(dir, "empty.pdf"), "")
	writeFile(t, filepath.Join(dir, "big.pdf"), "0123456789")
	single := filepath.Join(root, "single paper.pdf")
	writeFile(t, single, "%PDF-2")
	skipped := filepath.Join(root, "readme.md")
	writeFile(t, skipped, "x")

	l := NewLoader(true, 8, nil)
	docs, results, stats, err := l.Load(context.Background(), []string{single, dir, skipped})
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, "single paper.pdf", docs[0].Filename)
	assert.Equal(t, []byte("%PDF-2"), docs[0].Content)
	assert.Equal(t, "one.pdf", docs[1].Filename)

	assert.Len(t, results, 4)
	assert.Equal(t, uint32(2), stats.Loaded)
	assert.Equal(t, uint32(2), stats.Failed)
}

func TestLoaderErrors(t *testing.T) {
	l := NewLoader(true, 0, nil)
	_, _, _, err := l.Load(context.Background(), nil)
	assert.Error(t, err)
	_, _, _, err = l.Load(context.Background(), []string{filepath.Join(t.TempDir(), "missing.pdf")})
	assert.Error(t, err)
}

func TestAllowedExtAndHidden(t *testing.T) {
	assert.True(t, AllowedExt(".PDF"))
	assert.False(t, AllowedExt(".png"))
	assert.True(t, IsHidden("/a/.b"))
	assert.False(t, IsHidden("/a/b"))
}
