package site

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherFiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "content.yml")
	require.NoError(t, os.WriteFile(file, []byte("a"), 0o644))

	changed := make(chan struct{}, 4)
	w := &Watcher{
		Files:    []string{file},
		Debounce: 10 * time.Millisecond,
		OnChange: func() { changed <- struct{}{} },
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "content.yml.swp"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yml"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(file, []byte("b"), 0o644))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("OnChange was not called")
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestIsTempFile(t *testing.T) {
	tests := map[string]bool{
		"content.yml":      false,
		"content.yml~":     true,
		".content.yml.swp": true,
		"#content.yml#":    true,
		".#content.yml":    true,
		"content.yml.tmp":  true,
		"dir/content.yaml": false,
	}
	for name, want := range tests {
		assert.Equal(t, want, isTempFile(name), "isTempFile(%q)", name)
	}
}
