package adapter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "bopkit.dev/pkg/bopkit/internal/model"
)

const boxesScene = `version: 1
name: boxes
operation: connect
shapes:
  - name: a
    type: solid
    min: [0, 0, 0]
    max: [2, 2, 2]
  - name: b
    type: Solid
    min: [1, 1, 1]
    max: [3, 3, 3]
  - type: compound
    children:
      - type: vertex
        at: [5, 5, 5]
`

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLocalSceneStore_LoadScene(t *testing.T) {
	store := NewLocalSceneStore()

	t.Run("valid scene", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "boxes.yaml")
		writeTestFile(t, path, boxesScene)

		scene, err := store.LoadScene(m.Path(path))
		require.NoError(t, err)
		assert.Equal(t, "boxes", scene.Name)
		assert.Equal(t, m.OperationConnect, scene.Operation)
		assert.Equal(t, m.FragmentsStandard, scene.Mode)
		require.Len(t, scene.Shapes, 3)
		assert.Equal(t, m.ShapeSolid, scene.Shapes[1].Type)
		assert.Equal(t, m.Point{3, 3, 3}, *scene.Shapes[1].Max)
		assert.Equal(t, m.ShapeVertex, scene.Shapes[2].Children[0].Type)
		assert.Equal(t, []string{"a", "b", "#2"}, scene.ShapeNames())
	})

	t.Run("wrong version", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "old.yaml")
		writeTestFile(t, path, "version: 7\nshapes: []\n")

		_, err := store.LoadScene(m.Path(path))
		require.ErrorIs(t, err, ErrSceneVersion)
	})

	t.Run("no shapes", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.yaml")
		writeTestFile(t, path, "version: 1\nshapes: []\n")

		_, err := store.LoadScene(m.Path(path))
		require.ErrorIs(t, err, ErrEmptyScene)
	})

	t.Run("unknown field", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "typo.yaml")
		writeTestFile(t, path, "version: 1\nshapez: []\n")

		_, err := store.LoadScene(m.Path(path))
		require.Error(t, err)
	})

	t.Run("unknown shape type", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "type.yaml")
		writeTestFile(t, path, "version: 1\nshapes:\n  - type: blob\n")

		_, err := store.LoadScene(m.Path(path))
		require.Error(t, err)
	})

	t.Run("unknown operation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "op.yaml")
		writeTestFile(t, path, "version: 1\noperation: melt\nshapes:\n  - type: vertex\n    at: [0, 0, 0]\n")

		_, err := store.LoadScene(m.Path(path))
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := store.LoadScene(m.Path(filepath.Join(t.TempDir(), "missing.yaml")))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestLocalSceneStore_GlobScenes(t *testing.T) {
	store := NewLocalSceneStore()
	root := t.TempDir()

	writeTestFile(t, filepath.Join(root, "a.yaml"), boxesScene)
	writeTestFile(t, filepath.Join(root, "nested", "deep", "b.yaml"), boxesScene)
	writeTestFile(t, filepath.Join(root, "nested", "notes.txt"), "ignore me")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dir.yaml"), 0o755))

	paths, err := store.GlobScenes([]string{
		filepath.Join(root, "**", "*.yaml"),
		filepath.Join(root, "a.yaml"),
	})
	require.NoError(t, err)
	assert.Equal(t, []m.Path{
		m.Path(filepath.Join(root, "a.yaml")),
		m.Path(filepath.Join(root, "nested", "deep", "b.yaml")),
	}, paths)

	_, err = store.GlobScenes([]string{"[unclosed"})
	require.Error(t, err)
}

func TestExampleScenes(t *testing.T) {
	store := NewLocalSceneStore()

	paths, err := store.GlobScenes([]string{filepath.Join("..", "..", "examples", "*.yaml")})
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(string(path)), func(t *testing.T) {
			scene, err := store.LoadScene(path)
			require.NoError(t, err)
			assert.NotEmpty(t, scene.Operation)
		})
	}
}
