package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	m "bopkit.dev/pkg/bopkit/internal/model"
)

func TestFSSceneWatcher_Changes(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	other := filepath.Join(dir, "other.yaml")
	writeTestFile(t, path, boxesScene)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := NewFSSceneWatcher().Changes(ctx, m.Path(path), 20*time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(other, []byte("noise"), 0o600))

	for range 3 {
		require.NoError(t, os.WriteFile(path, []byte(boxesScene), 0o600))
	}

	select {
	case got := <-changes:
		require.Equal(t, m.Path(path), got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()

	for range changes {
	}
}

func TestFSSceneWatcher_MissingDirectory(t *testing.T) {
	_, err := NewFSSceneWatcher().Changes(context.Background(), m.Path(filepath.Join(t.TempDir(), "gone", "scene.yaml")), time.Millisecond)
	require.Error(t, err)
}
