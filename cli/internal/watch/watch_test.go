package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCallsBackOnChange(t *testing.T) {
	dir := t.TempDir()
	schemaFile := filepath.Join(dir, "schema.yaml")
	other := filepath.Join(dir, "other.txt")
	require.NoError(t, os.WriteFile(schemaFile, []byte("version: \"1.0\"\n"), 0o644))

	calls := make(chan struct{}, 10)
	w, err := NewWatcher(func() error {
		calls <- struct{}{}
		return nil
	}, schemaFile)
	require.NoError(t, err)
	w.SetDebounce(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	wait := func(msg string) {
		t.Helper()
		select {
		case <-calls:
		case <-time.After(5 * time.Second):
			t.Fatal(msg)
		}
	}
	wait("no initial callback")

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(schemaFile, []byte("version: \"1.1\"\n"), 0o644))
	wait("no callback after the schema changed")

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestNewWatcherMissingDirectory(t *testing.T) {
	_, err := NewWatcher(func() error { return nil }, filepath.Join(t.TempDir(), "missing", "schema.yaml"))
	assert.Error(t, err)
}
