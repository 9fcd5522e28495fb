package writer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/typegen/pkg/ir"
)

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, []string{"Service.php", "Destiny/**", "Legacy/"})
	require.NoError(t, err)

	files := []ir.File{
		{Path: "User/Models/GeneralUser.php", Content: []byte("<?php\n")},
		{Path: "Service.php", Content: []byte("base")},
		{Path: "Destiny/Entities/Item.php", Content: []byte("item")},
		{Path: "Legacy/Old.php", Content: []byte("old")},
		{Path: "User.php", Content: []byte("svc")},
	}

	n, err := w.Write(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(filepath.Join(dir, "User", "Models", "GeneralUser.php"))
	require.NoError(t, err)
	assert.Equal(t, "<?php\n", string(data))

	assert.NoFileExists(t, filepath.Join(dir, "Service.php"))
	assert.NoFileExists(t, filepath.Join(dir, "Destiny", "Entities", "Item.php"))
	assert.NoFileExists(t, filepath.Join(dir, "Legacy", "Old.php"))
	assert.FileExists(t, filepath.Join(dir, "User.php"))
}

func TestWriteRejectsEscapingPaths(t *testing.T) {
	w, err := New(t.TempDir(), nil)
	require.NoError(t, err)

	for _, p := range []string{"../evil.php", "/etc/passwd", ""} {
		_, err := w.Write(context.Background(), []ir.File{{Path: p}})
		var werr *Error
		require.True(t, errors.As(err, &werr), p)
		assert.Equal(t, "resolve", werr.Op)
	}
}

func TestWriteReportsFilesystemErrors(t *testing.T) {
	dir := t.TempDir()
	// A regular file where a directory is expected.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "User"), []byte("x"), 0o644))

	w, err := New(dir, nil)
	require.NoError(t, err)

	n, err := w.Write(context.Background(), []ir.File{{Path: "User/Models/Foo.php", Content: []byte("x")}})
	assert.Equal(t, 0, n)

	var werr *Error
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, "mkdir", werr.Op)
}

func TestWriteHonoursCancellation(t *testing.T) {
	w, err := New(t.TempDir(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := w.Write(ctx, []ir.File{{Path: "a.php"}})
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRejectsBadPattern(t *testing.T) {
	_, err := New(t.TempDir(), []string{"[a-"})
	assert.ErrorIs(t, err, doublestar.ErrBadPattern)
}
