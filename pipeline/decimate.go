package pipeline

import (
	"math"
	"sort"

	"github.com/vibe3d/lowpoly/geom"
	"github.com/vibe3d/lowpoly/logging"
	"github.com/vibe3d/lowpoly/scene"
)

// weldThreshold is the merge distance for near-duplicate vertices.
const weldThreshold = 0.0005

// Decimate reduces every mesh to roughly ratio of its vertex count:
// coincident vertices are welded, then the shortest edges are collapsed
// until the target is reached, then one smoothing iteration runs. All
// changes are baked into the mesh.
func Decimate(s *scene.Scene, ratio float64) error {
	for _, m := range s.Meshes {
		before := len(m.Vertices)
		Weld(m, weldThreshold)
		decimateMesh(m, ratio)
		Smooth(m, 1)
		recomputeNormals(m)
		logging.Infof("decimate %s: %d -> %d vertices", m.Name, before, len(m.Vertices))
	}
	return nil
}

// Weld merges vertices closer than threshold using a spatial hash.
func Weld(m *scene.Mesh, threshold float32) {
	cell := threshold
	if cell <= 0 {
		cell = weldThreshold
	}
	grid := map[[3]int][]int{}
	key := func(v *geom.Vector3) [3]int {
		return [3]int{
			int(math.Floor(float64(v.X / cell))),
			int(math.Floor(float64(v.Y / cell))),
			int(math.Floor(float64(v.Z / cell))),
		}
	}
	t2 := threshold * threshold
	remap := make([]int, len(m.Vertices))
	for i, v := range m.Vertices {
		remap[i] = i
		k := key(v)
		found := false
	neighbors:
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for dz := -1; dz <= 1; dz++ {
					nk := [3]int{k[0] + dx, k[1] + dy, k[2] + dz}
					for _, j := range grid[nk] {
						if m.Vertices[j].Sub(v).LenSqr() <= t2 {
							remap[i] = j
							found = true
							break neighbors
						}
					}
				}
			}
		}
		if !found {
			grid[k] = append(grid[k], i)
		}
	}
	m.CollapseVertices(remap)
}

type meshEdge struct {
	a, b int
	len2 float32
}

// decimateMesh collapses the shortest edges until round(ratio * count)
// vertices remain. Collapsed pairs merge at the edge midpoint.
func decimateMesh(m *scene.Mesh, ratio float64) {
	target := int(math.Round(ratio * float64(len(m.Vertices))))
	if target < 3 {
		target = 3
	}
	if len(m.Vertices) <= target {
		return
	}

	seen := map[[2]int]bool{}
	var edges []meshEdge
	for _, t := range m.Triangles {
		for i := 0; i < 3; i++ {
			a, b := t.V[i], t.V[(i+1)%3]
			if a > b {
				a, b = b, a
			}
			if a == b || seen[[2]int{a, b}] {
				continue
			}
			seen[[2]int{a, b}] = true
			edges = append(edges, meshEdge{a, b, m.Vertices[a].Sub(m.Vertices[b]).LenSqr()})
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].len2 < edges[j].len2 })

	remap := make([]int, len(m.Vertices))
	for i := range remap {
		remap[i] = i
	}
	find := func(i int) int {
		for remap[i] != i {
			remap[i] = remap[remap[i]]
			i = remap[i]
		}
		return i
	}
	count := len(m.Vertices)
	for _, e := range edges {
		if count <= target {
			break
		}
		a, b := find(e.a), find(e.b)
		if a == b {
			continue
		}
		mid := m.Vertices[a].Add(m.Vertices[b]).Scale(0.5)
		*m.Vertices[a] = *mid
		remap[b] = a
		count--
	}
	m.CollapseVertices(remap)
}

// Smooth runs n Laplacian iterations, moving each vertex halfway towards
// the average of its edge neighbors.
func Smooth(m *scene.Mesh, n int) {
	if len(m.Vertices) == 0 {
		return
	}
	neighbors := make(map[int][]int, len(m.Vertices))
	addEdge := func(a, b int) {
		neighbors[a] = append(neighbors[a], b)
		neighbors[b] = append(neighbors[b], a)
	}
	for _, t := range m.Triangles {
		addEdge(t.V[0], t.V[1])
		addEdge(t.V[1], t.V[2])
		addEdge(t.V[2], t.V[0])
	}
	for iter := 0; iter < n; iter++ {
		moved := make([]geom.Vector3, len(m.Vertices))
		for i, v := range m.Vertices {
			nb := neighbors[i]
			if len(nb) == 0 {
				moved[i] = *v
				continue
			}
			var avg geom.Vector3
			for _, j := range nb {
				avg = *avg.Add(m.Vertices[j])
			}
			avg = *avg.Scale(1 / float32(len(nb)))
			moved[i] = *v.Add(avg.Sub(v).Scale(0.5))
		}
		for i := range m.Vertices {
			*m.Vertices[i] = moved[i]
		}
	}
}

// recomputeNormals rebuilds per-vertex normals from face normals.
func recomputeNormals(m *scene.Mesh) {
	if len(m.Normals) == 0 {
		return
	}
	normals := make([]*geom.Vector3, len(m.Vertices))
	for i := range normals {
		normals[i] = &geom.Vector3{}
	}
	for _, t := range m.Triangles {
		a, b, c := m.Vertices[t.V[0]], m.Vertices[t.V[1]], m.Vertices[t.V[2]]
		n := b.Sub(a).Cross(c.Sub(a))
		for _, vi := range t.V {
			normals[vi] = normals[vi].Add(n)
		}
	}
	for _, n := range normals {
		n.Normalize()
	}
	m.Normals = normals
}
