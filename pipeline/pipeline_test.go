package pipeline

import (
	"image"
	"math"
	"testing"

	"github.com/vibe3d/lowpoly/geom"
	"github.com/vibe3d/lowpoly/scene"
)

func gridMesh(n int) *scene.Mesh {
	m := &scene.Mesh{Name: "grid"}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			m.Vertices = append(m.Vertices, &geom.Vector3{X: float32(x), Y: float32(y)})
		}
	}
	for y := 0; y < n-1; y++ {
		for x := 0; x < n-1; x++ {
			i := y*n + x
			m.Triangles = append(m.Triangles,
				scene.Triangle{V: [3]int{i, i + 1, i + n}},
				scene.Triangle{V: [3]int{i + 1, i + n + 1, i + n}})
		}
	}
	return m
}

func TestWeld(t *testing.T) {
	m := &scene.Mesh{
		Vertices: []*geom.Vector3{
			{X: 0, Y: 0, Z: 0}, {X: 0.0001, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0},
		},
		Triangles: []scene.Triangle{
			{V: [3]int{0, 2, 3}}, {V: [3]int{1, 2, 3}},
		},
	}
	Weld(m, weldThreshold)
	if len(m.Vertices) != 3 {
		t.Errorf("vertices after weld: %d", len(m.Vertices))
	}
	for _, tr := range m.Triangles {
		if tr.V[0] == tr.V[1] || tr.V[1] == tr.V[2] || tr.V[0] == tr.V[2] {
			t.Errorf("degenerate triangle survived: %v", tr.V)
		}
	}
}

func TestDecimateRatio(t *testing.T) {
	s := scene.NewScene("test")
	s.Meshes = append(s.Meshes, gridMesh(10))
	if err := Decimate(s, 0.25); err != nil {
		t.Fatal(err)
	}
	m := s.Meshes[0]
	if len(m.Vertices) > 25 || len(m.Vertices) < 3 {
		t.Errorf("vertices after decimate: %d", len(m.Vertices))
	}
	for _, tr := range m.Triangles {
		for _, v := range tr.V {
			if v < 0 || v >= len(m.Vertices) {
				t.Fatalf("index out of range: %v", tr.V)
			}
		}
		if tr.V[0] == tr.V[1] || tr.V[1] == tr.V[2] || tr.V[0] == tr.V[2] {
			t.Errorf("degenerate triangle: %v", tr.V)
		}
	}
}

func TestFixOrigin(t *testing.T) {
	s := scene.NewScene("test")
	m := gridMesh(3)
	m.Translation = geom.Vector3{X: 5, Y: 5, Z: 5}
	s.Meshes = append(s.Meshes, m)
	if err := FixOrigin(s); err != nil {
		t.Fatal(err)
	}
	if m.Translation.X != 0 || m.Translation.Y != 0 || m.Translation.Z != 0 {
		t.Errorf("translation: %v", m.Translation)
	}
	bc := m.WorldBounds().BottomCenter()
	if math.Abs(float64(bc.X)) > 1e-5 || math.Abs(float64(bc.Y)) > 1e-5 || math.Abs(float64(bc.Z)) > 1e-5 {
		t.Errorf("bottom center: %v", bc)
	}
}

func TestFixOriginArmatureParented(t *testing.T) {
	s := scene.NewScene("test")
	m := gridMesh(3)
	m.Translation = geom.Vector3{X: 2, Y: 0, Z: 0}
	m.ParentIsArmature = true
	s.Meshes = append(s.Meshes, m)
	s.Armature = &scene.Armature{Name: "rig", Translation: geom.Vector3{X: 1, Y: 0, Z: 0}}
	if err := FixOrigin(s); err != nil {
		t.Fatal(err)
	}
	if s.Armature.Translation.X != 0 {
		t.Errorf("armature: %v", s.Armature.Translation)
	}
	// offset relative to the armature survives
	if m.Translation.X != 1 {
		t.Errorf("parented translation: %v", m.Translation)
	}
}

func TestFixOriginShiftsBones(t *testing.T) {
	s := scene.NewScene("test")
	m := gridMesh(3)
	m.Translation = geom.Vector3{X: 2, Y: 0, Z: 0}
	m.ParentIsArmature = true
	s.Meshes = append(s.Meshes, m)
	s.Armature = &scene.Armature{
		Name:        "rig",
		Translation: geom.Vector3{X: 1, Y: 0, Z: 0},
		Bones: []*scene.Bone{
			{Name: "root", Parent: -1, Translation: geom.Vector3{X: 0, Y: 0, Z: 1}},
			{Name: "tip", Parent: 0, Translation: geom.Vector3{X: 0, Y: 0, Z: 2}},
		},
	}

	// world position of a vertex relative to the root bone, before
	v0 := *m.Translation.Add(m.Vertices[0])
	b0 := *s.Armature.Translation.Add(&s.Armature.Bones[0].Translation)
	before := *v0.Sub(&b0)

	if err := FixOrigin(s); err != nil {
		t.Fatal(err)
	}

	v1 := *m.Translation.Add(m.Vertices[0])
	b1 := *s.Armature.Translation.Add(&s.Armature.Bones[0].Translation)
	after := *v1.Sub(&b1)
	if math.Abs(float64(after.X-before.X)) > 1e-5 ||
		math.Abs(float64(after.Y-before.Y)) > 1e-5 ||
		math.Abs(float64(after.Z-before.Z)) > 1e-5 {
		t.Errorf("bone to vertex offset changed: %v -> %v", before, after)
	}
	// child bones stay relative to their parent
	if s.Armature.Bones[1].Translation != (geom.Vector3{X: 0, Y: 0, Z: 2}) {
		t.Errorf("child bone moved: %v", s.Armature.Bones[1].Translation)
	}
}

func TestStripAnimations(t *testing.T) {
	s := scene.NewScene("test")
	s.Animations = []string{"walk", "idle"}
	if err := StripAnimations(s); err != nil {
		t.Fatal(err)
	}
	if len(s.Animations) != 0 {
		t.Errorf("animations: %v", s.Animations)
	}
}

func texturedScene() *scene.Scene {
	s := scene.NewScene("test")
	s.Meshes = append(s.Meshes, gridMesh(3))
	s.Images = append(s.Images,
		&scene.Image{Name: "diffuse", MimeType: "image/png", Image: image.NewRGBA(image.Rect(0, 0, 64, 64))},
		&scene.Image{Name: "normal", MimeType: "image/png", Image: image.NewRGBA(image.Rect(0, 0, 64, 64))})
	mat := scene.NewMaterial("mat")
	base, norm := 0, 1
	mat.BaseColorTexture = &base
	mat.NormalTexture = &norm
	s.Materials = append(s.Materials, mat)
	return s
}

func TestProcessTexturesResize(t *testing.T) {
	s := texturedScene()
	cfg := &Config{TextureSize: 16, NormalMapSize: 8, TextureFormat: FormatJPEG, TextureQuality: 80}
	if err := ProcessTextures(s, cfg); err != nil {
		t.Fatal(err)
	}
	if s.Images[0].Width() != 16 || s.Images[0].MimeType != "image/jpeg" {
		t.Errorf("diffuse: %dx%d %s", s.Images[0].Width(), s.Images[0].Height(), s.Images[0].MimeType)
	}
	// normal maps use their own size and always stay PNG
	if s.Images[1].Width() != 8 || s.Images[1].MimeType != "image/png" {
		t.Errorf("normal: %dx%d %s", s.Images[1].Width(), s.Images[1].Height(), s.Images[1].MimeType)
	}
}

func TestProcessTexturesSkipsSmaller(t *testing.T) {
	s := texturedScene()
	cfg := &Config{TextureSize: 128, NormalMapSize: 128, TextureFormat: FormatPNG, TextureQuality: 90}
	if err := ProcessTextures(s, cfg); err != nil {
		t.Fatal(err)
	}
	if s.Images[0].Width() != 64 {
		t.Errorf("should not upscale: %d", s.Images[0].Width())
	}
}

func TestProcessTexturesRemove(t *testing.T) {
	s := texturedScene()
	cfg := &Config{RemoveTextures: true}
	if err := ProcessTextures(s, cfg); err != nil {
		t.Fatal(err)
	}
	if len(s.Images) != 0 {
		t.Errorf("images: %d", len(s.Images))
	}
	if len(s.Materials) != 1 || s.Materials[0].BaseColor != flatColor {
		t.Errorf("materials: %+v", s.Materials)
	}
}

func TestProcessTexturesKeepOriginals(t *testing.T) {
	s := texturedScene()
	cfg := &Config{KeepOriginalTextures: true, TextureSize: 16}
	if err := ProcessTextures(s, cfg); err != nil {
		t.Fatal(err)
	}
	if s.Images[0].Width() != 64 {
		t.Errorf("textures should be untouched: %d", s.Images[0].Width())
	}
}

func TestRunAggregatesFailures(t *testing.T) {
	s := scene.NewScene("test")
	s.Meshes = append(s.Meshes, gridMesh(3))
	cfg := DefaultConfig()
	cfg.ApplyTexture = "/nonexistent/texture.png"
	result, err := Run(s, cfg)
	if err == nil {
		t.Fatal("missing apply-texture image should fail the run")
	}
	last := result.Passes[len(result.Passes)-1]
	if last.Name != "apply-image-material" || last.Err == nil {
		t.Errorf("last pass: %+v", last)
	}
	// fatal pass aborts before decimation
	for _, p := range result.Passes {
		if p.Name == "decimate" {
			t.Error("decimate should not run after a fatal pass")
		}
	}
}

func TestRunSuccess(t *testing.T) {
	s := texturedScene()
	cfg := DefaultConfig()
	cfg.NormalMapSize = cfg.TextureSize
	result, err := Run(s, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Passes) != 5 {
		t.Errorf("passes: %d", len(result.Passes))
	}
}
