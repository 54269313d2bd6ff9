package modelio

import (
	"errors"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/vibe3d/lowpoly/geom"
	"github.com/vibe3d/lowpoly/scene"
)

func testScene(withTexture bool) *scene.Scene {
	s := scene.NewScene("test")
	mesh := &scene.Mesh{
		Name: "quad",
		Vertices: []*geom.Vector3{
			{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
		},
		Normals: []*geom.Vector3{
			{Z: 1}, {Z: 1}, {Z: 1}, {Z: 1},
		},
		UVs: []geom.Vector2{
			{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
		},
		Triangles: []scene.Triangle{
			{V: [3]int{0, 1, 2}}, {V: [3]int{0, 2, 3}},
		},
		Translation: geom.Vector3{X: 1, Y: 2, Z: 3},
	}
	s.Meshes = append(s.Meshes, mesh)
	mat := scene.NewMaterial("red")
	mat.BaseColor = geom.Vector4{X: 1, Y: 0, Z: 0, W: 1}
	if withTexture {
		img := image.NewRGBA(image.Rect(0, 0, 4, 4))
		for i := 0; i < 16; i++ {
			img.Set(i%4, i/4, color.RGBA{R: 255, A: 255})
		}
		s.Images = append(s.Images, &scene.Image{Name: "tex", MimeType: "image/png", Image: img})
		tex := 0
		mat.BaseColorTexture = &tex
	}
	s.Materials = append(s.Materials, mat)
	return s
}

func near(a, b, eps float32) bool {
	return math.Abs(float64(a-b)) < float64(eps)
}

func TestFBXRoundTrip(t *testing.T) {
	src := testScene(false)
	path := filepath.Join(t.TempDir(), "quad.fbx")
	if err := Save(src, path, nil); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Meshes) != 1 {
		t.Fatalf("meshes: %d", len(s.Meshes))
	}
	m := s.Meshes[0]
	if m.Name != "quad" {
		t.Errorf("name: %s", m.Name)
	}
	if len(m.Triangles) != 2 {
		t.Errorf("triangles: %d", len(m.Triangles))
	}
	if !near(m.Translation.X, 1, 1e-5) || !near(m.Translation.Y, 2, 1e-5) || !near(m.Translation.Z, 3, 1e-5) {
		t.Errorf("translation: %v", m.Translation)
	}
	b := m.Bounds()
	if !near(b.Min.X, 0, 1e-5) || !near(b.Max.X, 1, 1e-5) || !near(b.Max.Y, 1, 1e-5) {
		t.Errorf("bounds: %v", b)
	}
	if len(s.Materials) != 1 || s.Materials[0].Name != "red" {
		t.Fatalf("materials: %v", s.Materials)
	}
	c := s.Materials[0].BaseColor
	if !near(c.X, 1, 1e-5) || !near(c.Y, 0, 1e-5) || !near(c.W, 1, 1e-5) {
		t.Errorf("color: %v", c)
	}
}

func TestGLBRoundTrip(t *testing.T) {
	src := testScene(true)
	path := filepath.Join(t.TempDir(), "quad.glb")
	if err := Save(src, path, DefaultExportOptions()); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Meshes) != 1 {
		t.Fatalf("meshes: %d", len(s.Meshes))
	}
	m := s.Meshes[0]
	if len(m.Vertices) != 4 || len(m.Triangles) != 2 {
		t.Errorf("vertices: %d triangles: %d", len(m.Vertices), len(m.Triangles))
	}
	// quantized at 14 bits
	if !near(m.Vertices[2].X, 1, 1e-3) || !near(m.Vertices[2].Y, 1, 1e-3) {
		t.Errorf("vertices: %v", m.Vertices[2])
	}
	if !near(m.Translation.X, 1, 1e-5) || !near(m.Translation.Y, 2, 1e-5) || !near(m.Translation.Z, 3, 1e-5) {
		t.Errorf("translation: %v", m.Translation)
	}
	if len(m.Normals) != 4 || !near(m.Normals[0].Z, 1, 1e-2) {
		t.Errorf("normals: %v", m.Normals)
	}
	if len(s.Materials) != 1 {
		t.Fatalf("materials: %d", len(s.Materials))
	}
	mat := s.Materials[0]
	if mat.BaseColorTexture == nil {
		t.Fatal("texture reference lost")
	}
	img := s.Images[*mat.BaseColorTexture]
	if img.Width() != 4 || img.Height() != 4 {
		t.Errorf("image: %dx%d", img.Width(), img.Height())
	}
}

func TestUnsupportedExtension(t *testing.T) {
	if _, err := Load("model.obj"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("load: %v", err)
	}
	if err := Save(testScene(false), "model.obj", nil); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("save: %v", err)
	}
}

func TestGLTFImportSkipsPositionless(t *testing.T) {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	idx := modeler.WriteIndices(doc, []uint32{0, 1, 2})
	bare := modeler.WriteIndices(doc, []uint32{0, 1, 2})
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: "tri",
		Primitives: []*gltf.Primitive{
			{Indices: gltf.Index(bare)},
			{Indices: gltf.Index(idx), Attributes: map[string]uint32{"POSITION": pos}},
		},
	})
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: "tri", Mesh: gltf.Index(0)})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	s, err := buildScene(doc, ".", "tri")
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Meshes) != 1 {
		t.Fatalf("meshes: %d", len(s.Meshes))
	}
	m := s.Meshes[0]
	if len(m.Vertices) != 3 || len(m.Triangles) != 1 {
		t.Errorf("vertices %d triangles %d", len(m.Vertices), len(m.Triangles))
	}
}

func TestQuantize(t *testing.T) {
	v := float32(0.123456789)
	q := quantize(v, 14)
	if !near(q, v, 1.0/16384) {
		t.Errorf("quantize(14): %v -> %v", v, q)
	}
	if quantize(v, 0) != v {
		t.Errorf("bits=0 should pass through")
	}
}
