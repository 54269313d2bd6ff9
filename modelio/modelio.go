// Package modelio loads and saves scene.Scene values, dispatching on file
// extension: .fbx for FBX, .glb/.gltf for glTF.
package modelio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vibe3d/lowpoly/scene"
)

var ErrUnsupportedFormat = errors.New("unsupported file extension")

// Load imports a model file into a scene.
func Load(path string) (*scene.Scene, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".fbx":
		return loadFBX(path)
	case ".glb", ".gltf":
		return loadGLTF(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

// Save exports the scene, dispatching on the output extension.
func Save(s *scene.Scene, path string, opt *ExportOptions) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".fbx":
		return saveFBX(s, path)
	case ".glb", ".gltf":
		return saveGLTF(s, path, opt)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}
