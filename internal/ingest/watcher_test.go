package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func next(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher event")
		return ""
	}
}

func TestWatcherEmitsArchives(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"old.zip":   "PK",
		"notes.txt": "x",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{root},
		InitialScan: true,
		Debounce:    20 * time.Millisecond,
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "old.zip"), next(t, events))

	require.NoError(t, os.WriteFile(filepath.Join(root, ".partial.rar"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "ignored.pdf"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "NEW.RAR"), []byte("Rar!"), 0o600))
	assert.Equal(t, filepath.Join(root, "NEW.RAR"), next(t, events))

	cancel()
	for range events {
	}
}

func TestWatcherNoRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{})
	assert.Error(t, err)
}

func TestIsArchive(t *testing.T) {
	assert.True(t, IsArchive("/in/a.ZIP"))
	assert.True(t, IsArchive("b.rar"))
	assert.False(t, IsArchive("c.7z"))
	assert.True(t, IsHidden("/in/.tmp.zip"))
	assert.False(t, IsHidden("/in/tmp.zip"))
}
