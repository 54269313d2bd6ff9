package scene

import (
	"github.com/vibe3d/lowpoly/geom"
)

type Triangle struct {
	V        [3]int
	Material int // index into Scene.Materials, -1 if unassigned
}

type Mesh struct {
	Name     string
	Vertices []*geom.Vector3
	Normals  []*geom.Vector3 // per vertex, may be nil
	UVs      []geom.Vector2  // per vertex, may be nil

	Triangles []Triangle

	// Skin weights, per vertex. Empty when the mesh is not skinned.
	Joints  [][4]uint16
	Weights [][4]float32

	// Translation is the object transform. World position of a vertex is
	// Translation + vertex.
	Translation geom.Vector3

	ParentIsArmature bool
}

func (m *Mesh) Skinned() bool {
	return len(m.Joints) > 0
}

// Bounds returns the local-space bounding box of the mesh vertices.
func (m *Mesh) Bounds() *geom.Bounds {
	b := geom.NewBounds()
	for _, v := range m.Vertices {
		b.Extend(v)
	}
	return b
}

// WorldBounds returns the bounding box with the object transform applied.
func (m *Mesh) WorldBounds() *geom.Bounds {
	b := geom.NewBounds()
	for _, v := range m.Vertices {
		b.Extend(v.Add(&m.Translation))
	}
	return b
}

// Transform applies f to every vertex in place.
func (m *Mesh) Transform(f func(v *geom.Vector3)) {
	for _, v := range m.Vertices {
		f(v)
	}
}

// remapVertices rewrites vertex attributes and triangle indices.
// remap maps old index to new index, -1 drops the vertex.
func (m *Mesh) remapVertices(remap []int, count int) {
	vertices := make([]*geom.Vector3, count)
	var normals []*geom.Vector3
	var uvs []geom.Vector2
	var joints [][4]uint16
	var weights [][4]float32
	if m.Normals != nil {
		normals = make([]*geom.Vector3, count)
	}
	if m.UVs != nil {
		uvs = make([]geom.Vector2, count)
	}
	if m.Skinned() {
		joints = make([][4]uint16, count)
		weights = make([][4]float32, count)
	}
	for old, next := range remap {
		if next < 0 {
			continue
		}
		vertices[next] = m.Vertices[old]
		if normals != nil && old < len(m.Normals) {
			normals[next] = m.Normals[old]
		}
		if uvs != nil && old < len(m.UVs) {
			uvs[next] = m.UVs[old]
		}
		if joints != nil && old < len(m.Joints) {
			joints[next] = m.Joints[old]
			weights[next] = m.Weights[old]
		}
	}
	m.Vertices = vertices
	m.Normals = normals
	m.UVs = uvs
	m.Joints = joints
	m.Weights = weights

	var triangles []Triangle
	for _, t := range m.Triangles {
		nt := Triangle{Material: t.Material}
		for i, v := range t.V {
			nt.V[i] = remap[v]
		}
		if nt.V[0] != nt.V[1] && nt.V[1] != nt.V[2] && nt.V[0] != nt.V[2] {
			triangles = append(triangles, nt)
		}
	}
	m.Triangles = triangles
}

// CollapseVertices merges each vertex i into remap[i] (remap[i] == i keeps
// the vertex), removing degenerate triangles and unused vertices.
func (m *Mesh) CollapseVertices(remap []int) {
	// resolve chains
	for i := range remap {
		j := i
		for remap[j] != j {
			j = remap[j]
		}
		remap[i] = j
	}
	used := make([]bool, len(m.Vertices))
	for _, t := range m.Triangles {
		for _, v := range t.V {
			used[remap[v]] = true
		}
	}
	next := make([]int, len(m.Vertices))
	count := 0
	for i := range m.Vertices {
		if remap[i] == i && used[i] {
			next[i] = count
			count++
		} else {
			next[i] = -1
		}
	}
	final := make([]int, len(m.Vertices))
	for i := range final {
		final[i] = next[remap[i]]
	}
	m.remapVertices(final, count)
}
