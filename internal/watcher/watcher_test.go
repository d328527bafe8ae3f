package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	taskerrors "github.com/conneroisu/lesstask/internal/errors"
)

const waitFor = 5 * time.Second

func newTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "App", "less"), 0o755))
	return root
}

func startWatcher(t *testing.T, root string, opts Options) *Watcher {
	t.Helper()
	w, err := Watch(context.Background(), filepath.ToSlash(root)+"/*/less/**/*.less", opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

// touchUntil rewrites path until the watcher reports a change or the wait
// expires. Newly added watches may miss the very first write.
func touchUntil(t *testing.T, w *Watcher, path string) ChangeEvent {
	t.Helper()
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(waitFor)

	for {
		require.NoError(t, os.WriteFile(path, []byte(".a{}"), 0o644))
		select {
		case ev, ok := <-w.Events():
			require.True(t, ok, "event stream closed early")
			return ev
		case <-ticker.C:
		case <-deadline:
			t.Fatalf("no change event for %s", path)
		}
	}
}

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		eventType EventType
		want      string
		triggers  bool
	}{
		{EventTypeCreated, "created", true},
		{EventTypeModified, "modified", true},
		{EventTypeDeleted, "deleted", false},
		{EventTypeRenamed, "renamed", false},
		{EventTypeOther, "unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.eventType.String())
			assert.Equal(t, tt.triggers, tt.eventType.Triggers())
		})
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, EventTypeCreated, classify(fsnotify.Create))
	assert.Equal(t, EventTypeCreated, classify(fsnotify.Create|fsnotify.Write))
	assert.Equal(t, EventTypeModified, classify(fsnotify.Write))
	assert.Equal(t, EventTypeDeleted, classify(fsnotify.Remove))
	assert.Equal(t, EventTypeRenamed, classify(fsnotify.Rename))
	assert.Equal(t, EventTypeOther, classify(fsnotify.Chmod))
}

func TestMatches(t *testing.T) {
	root := newTree(t)
	w := startWatcher(t, root, Options{})

	assert.True(t, w.Matches(filepath.Join(root, "App", "less", "a.less")))
	assert.True(t, w.Matches(filepath.Join(root, "App", "less", "nested", "deep", "b.less")))
	assert.False(t, w.Matches(filepath.Join(root, "App", "less", "a.css")))
	assert.False(t, w.Matches(filepath.Join(root, "App", "a.less")))
	assert.False(t, w.Matches(filepath.Join(filepath.Dir(root), "elsewhere.less")))
}

func TestWatchReportsMatchingChanges(t *testing.T) {
	root := newTree(t)
	w := startWatcher(t, root, Options{})

	// not matched by the pattern
	require.NoError(t, os.WriteFile(filepath.Join(root, "App", "less", "notes.txt"), []byte("x"), 0o644))

	target := filepath.Join(root, "App", "less", "site.less")
	ev := touchUntil(t, w, target)

	assert.Equal(t, target, ev.Path)
	assert.True(t, ev.Type.Triggers())
}

func TestWatchFollowsNewDirectories(t *testing.T) {
	root := newTree(t)
	w := startWatcher(t, root, Options{})

	nested := filepath.Join(root, "App", "less", "components")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	target := filepath.Join(nested, "button.less")
	var ev ChangeEvent
	for ev.Path != target {
		ev = touchUntil(t, w, target)
	}
	assert.Equal(t, target, ev.Path)
}

func TestWatchReportsStylesheetsInMovedDirectory(t *testing.T) {
	root := newTree(t)
	w := startWatcher(t, root, Options{})

	staging := t.TempDir()
	bundle := filepath.Join(staging, "Admin")
	require.NoError(t, os.MkdirAll(filepath.Join(bundle, "less"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bundle, "less", "admin.less"), []byte(".admin{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(bundle, "less", "readme.txt"), []byte("x"), 0o644))

	require.NoError(t, os.Rename(bundle, filepath.Join(root, "Admin")))

	want := filepath.Join(root, "Admin", "less", "admin.less")
	select {
	case ev, ok := <-w.Events():
		require.True(t, ok, "event stream closed early")
		assert.Equal(t, want, ev.Path)
		assert.Equal(t, EventTypeCreated, ev.Type)
	case <-time.After(waitFor):
		t.Fatal("no event for a stylesheet moved in with its directory")
	}
}

func TestWatchDebounce(t *testing.T) {
	root := newTree(t)
	w := startWatcher(t, root, Options{Debounce: 300 * time.Millisecond})

	dir := filepath.Join(root, "App", "less")
	for _, name := range []string{"a.less", "b.less", "c.less"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(".x{}"), 0o644))
	}

	select {
	case <-w.Events():
	case <-time.After(waitFor):
		t.Fatal("no debounced event")
	}

	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected second event for %s", ev.Path)
	case <-time.After(600 * time.Millisecond):
	}
}

func TestWatchClose(t *testing.T) {
	root := newTree(t)
	w, err := Watch(context.Background(), filepath.ToSlash(root)+"/**/*.less", Options{})
	require.NoError(t, err)

	require.NoError(t, w.Close())
	assert.NoError(t, w.Close(), "closing twice is allowed")

	select {
	case _, ok := <-w.Events():
		assert.False(t, ok)
	case <-time.After(waitFor):
		t.Fatal("event stream not closed")
	}
}

func TestWatchStopsWithContext(t *testing.T) {
	root := newTree(t)
	ctx, cancel := context.WithCancel(context.Background())

	w, err := Watch(ctx, filepath.ToSlash(root)+"/**/*.less", Options{})
	require.NoError(t, err)
	defer w.Close()

	cancel()

	select {
	case _, ok := <-w.Events():
		assert.False(t, ok)
	case <-time.After(waitFor):
		t.Fatal("event stream not closed after cancellation")
	}
}

func TestWatchErrors(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "missing")
		_, err := Watch(context.Background(), filepath.ToSlash(missing)+"/**/*.less", Options{})
		require.Error(t, err)
		assert.True(t, taskerrors.IsWatchError(err))
	})

	t.Run("pattern without glob", func(t *testing.T) {
		_, err := Watch(context.Background(), filepath.ToSlash(t.TempDir())+"/", Options{})
		require.Error(t, err)
		assert.True(t, taskerrors.IsWatchError(err))
	})
}
