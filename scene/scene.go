// Package scene holds an in-memory scene graph for imported models.
// Transform passes mutate a *Scene in place; importers and exporters
// translate between file formats and this representation.
package scene

import (
	"github.com/vibe3d/lowpoly/geom"
)

type Scene struct {
	Name      string
	Meshes    []*Mesh
	Armature  *Armature
	Materials []*Material
	Images    []*Image

	// Animations holds the names of animation clips found at import time.
	// Clips are not converted; the strip pass reports and clears them.
	Animations []string
}

func NewScene(name string) *Scene {
	return &Scene{Name: name}
}

// MainMesh returns the mesh with the most vertices, or nil.
func (s *Scene) MainMesh() *Mesh {
	var main *Mesh
	for _, m := range s.Meshes {
		if main == nil || len(m.Vertices) > len(main.Vertices) {
			main = m
		}
	}
	return main
}

// ReplaceMaterials drops all materials and assigns mat to every mesh.
func (s *Scene) ReplaceMaterials(mat *Material) {
	s.Materials = []*Material{mat}
	for _, m := range s.Meshes {
		for i := range m.Triangles {
			m.Triangles[i].Material = 0
		}
	}
}

// RemoveImages drops every image except the ones in keep.
func (s *Scene) RemoveImages(keep ...*Image) {
	var kept []*Image
	for _, img := range s.Images {
		for _, k := range keep {
			if img == k {
				kept = append(kept, img)
				break
			}
		}
	}
	s.Images = kept
}

type Armature struct {
	Name        string
	Translation geom.Vector3
	Bones       []*Bone
}

type Bone struct {
	Name        string
	Parent      int // index into Armature.Bones, -1 for roots
	Translation geom.Vector3
}
