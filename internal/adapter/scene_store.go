package adapter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	m "bopkit.dev/pkg/bopkit/internal/model"
)

// SceneVersion is the scene file format this build understands.
const SceneVersion = 1

var (
	// ErrSceneVersion is returned for scene files of another format version.
	ErrSceneVersion = errors.New("unsupported scene version")
	// ErrEmptyScene is returned for scene files without shapes.
	ErrEmptyScene = errors.New("scene has no shapes")
)

// SceneStore reads scene files.
type SceneStore interface {
	// LoadScene parses and validates the scene at path.
	LoadScene(path m.Path) (m.Scene, error)
	// GlobScenes expands patterns, including "**", into a sorted list of files.
	GlobScenes(patterns []string) ([]m.Path, error)
}

// LocalSceneStore reads scenes from the local filesystem.
type LocalSceneStore struct{}

// NewLocalSceneStore constructs a LocalSceneStore.
func NewLocalSceneStore() *LocalSceneStore {
	return &LocalSceneStore{}
}

// LoadScene parses a YAML scene. Unknown fields are rejected.
func (s *LocalSceneStore) LoadScene(path m.Path) (m.Scene, error) {
	data, err := os.ReadFile(string(path))
	if err != nil {
		return m.Scene{}, fmt.Errorf("read scene %s: %w", path, err)
	}

	var scene m.Scene

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&scene); err != nil {
		return m.Scene{}, fmt.Errorf("parse scene %s: %w", path, err)
	}

	if scene.Version != SceneVersion {
		return m.Scene{}, fmt.Errorf("%w %d in %s (want %d)", ErrSceneVersion, scene.Version, path, SceneVersion)
	}

	if len(scene.Shapes) == 0 {
		return m.Scene{}, fmt.Errorf("%w: %s", ErrEmptyScene, path)
	}

	if scene.Operation != "" {
		if scene.Operation, err = m.ParseOperation(string(scene.Operation)); err != nil {
			return m.Scene{}, fmt.Errorf("scene %s: %w", path, err)
		}
	}

	if scene.Mode, err = m.ParseFragmentsMode(string(scene.Mode)); err != nil {
		return m.Scene{}, fmt.Errorf("scene %s: %w", path, err)
	}

	return scene, nil
}

// GlobScenes expands every pattern and returns the matching regular files,
// sorted and without duplicates.
func (s *LocalSceneStore) GlobScenes(patterns []string) ([]m.Path, error) {
	var paths []m.Path

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}

			paths = append(paths, m.Path(match))
		}
	}

	slices.Sort(paths)

	return slices.Compact(paths), nil
}
