package fbx

import (
	"bytes"
	"testing"

	"github.com/vibe3d/lowpoly/geom"
)

func buildTestRoot() *DocumentBuilder {
	b := NewDocumentBuilder("lowpoly test")
	model := b.AddModel("cube", &geom.Vector3{X: 1, Y: 2, Z: 3})
	g := b.AddGeometry("cubemesh",
		[]*geom.Vector3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}},
		[][]int{{0, 1, 2}},
		[]*geom.Vector3{{X: 0, Y: 0, Z: 1}, {X: 0, Y: 0, Z: 1}, {X: 0, Y: 0, Z: 1}},
		nil,
		[]int32{0})
	mat := b.AddMaterial("red", &geom.Vector4{X: 1, Y: 0, Z: 0, W: 1})
	b.Connect(model, 0)
	b.Connect(g, model)
	b.Connect(mat, model)
	return b
}

func TestWriteParseRoundTrip(t *testing.T) {
	b := buildTestRoot()
	var buf bytes.Buffer
	if err := Write(&buf, b.Root()); err != nil {
		t.Fatal(err)
	}

	doc, err := Parse(&buf)
	if err != nil {
		t.Fatal(err)
	}
	models := doc.RootModels()
	if len(models) != 1 {
		t.Fatalf("models: %d", len(models))
	}
	if ObjectName(models[0]) != "cube" {
		t.Error("model name", ObjectName(models[0]))
	}
	tr := Property70Vec3(models[0], "Lcl Translation", &geom.Vector3{})
	if *tr != (geom.Vector3{X: 1, Y: 2, Z: 3}) {
		t.Error("translation", tr)
	}

	id := models[0].AttrInt64(0, -1)
	geoms := doc.Refs(id, "Geometry")
	if len(geoms) != 1 {
		t.Fatalf("geometries: %d", len(geoms))
	}
	verts := geoms[0].FindChild("Vertices").Attr(0).ToVec3Array()
	if len(verts) != 3 || *verts[1] != (geom.Vector3{X: 1, Y: 0, Z: 0}) {
		t.Error("vertices", verts)
	}
	faces := Faces(geoms[0].FindChild("PolygonVertexIndex").Attr(0).ToInt32Array())
	if len(faces) != 1 || len(faces[0]) != 3 || faces[0][2] != 2 {
		t.Error("faces", faces)
	}

	mats := doc.Refs(id, "Material")
	if len(mats) != 1 || ObjectName(mats[0]) != "red" {
		t.Fatalf("materials: %v", mats)
	}
	col := Property70Vec3(mats[0], "DiffuseColor", nil)
	if col == nil || *col != (geom.Vector3{X: 1, Y: 0, Z: 0}) {
		t.Error("diffuse", col)
	}
}

func TestFloat32ArrayFromIntValues(t *testing.T) {
	// arrays whose values all lack a decimal point come back from the
	// ASCII reader typed as ints
	a := &Attribute{Value: []int64{0, -1, 2}}
	f := a.ToFloat32Array()
	if len(f) != 3 || f[1] != -1 || f[2] != 2 {
		t.Error("int64 array", f)
	}
	a = &Attribute{Value: []int32{3, 0, 0, 0, 4, 0}}
	vv := a.ToVec3Array()
	if len(vv) != 2 || *vv[0] != (geom.Vector3{X: 3, Y: 0, Z: 0}) || *vv[1] != (geom.Vector3{X: 0, Y: 4, Z: 0}) {
		t.Error("int32 vec3 array", vv)
	}
}

func TestFacesSplit(t *testing.T) {
	faces := Faces([]int32{0, 1, ^int32(2), 2, 3, 4, ^int32(5)})
	if len(faces) != 2 {
		t.Fatal("faces", faces)
	}
	if len(faces[0]) != 3 || len(faces[1]) != 4 {
		t.Error("face sizes", faces)
	}
	if faces[0][2] != 2 || faces[1][3] != 5 {
		t.Error("negated last index", faces)
	}
}

func TestBinaryMagicRejected(t *testing.T) {
	_, err := Parse(bytes.NewReader([]byte("not an fbx at all")))
	if err != nil {
		// ASCII fallback tolerates junk; a document with no objects is fine
		t.Log(err)
	}
}
