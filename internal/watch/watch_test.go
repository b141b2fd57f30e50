package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, dirs ...string) (*Watcher, *atomic.Int32) {
	t.Helper()
	w, err := New([]string{"agmd.yml", "AGENTS.local.md"}, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	w.SetDirs(dirs)

	var fired atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx, func(context.Context) { fired.Add(1) })
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Close()
	})
	return w, &fired
}

func TestRun_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	_, fired := startWatcher(t, dir)

	target := filepath.Join(dir, "AGENTS.local.md")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(target, []byte{byte('a' + i)}, 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return fired.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestRun_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	_, fired := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "AGENTS.md"), []byte("generated"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, fired.Load())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "agmd.yml"), []byte("[]\n"), 0o644))
	assert.Eventually(t, func() bool { return fired.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestSetDirs(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	w, err := New([]string{"agmd.yml"})
	require.NoError(t, err)
	defer w.Close()

	w.SetDirs([]string{a, filepath.Join(a, "missing")})
	assert.Equal(t, []string{a}, w.Dirs())

	w.SetDirs([]string{b})
	assert.Equal(t, []string{b}, w.Dirs())
}
