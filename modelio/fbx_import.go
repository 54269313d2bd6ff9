package modelio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/vibe3d/lowpoly/fbx"
	"github.com/vibe3d/lowpoly/geom"
	"github.com/vibe3d/lowpoly/logging"
	"github.com/vibe3d/lowpoly/scene"
)

type fbxImporter struct {
	doc      *fbx.Document
	scene    *scene.Scene
	dir      string
	matIndex map[*fbx.Node]int
	imgIndex map[string]int
	boneIdx  map[int64]int
}

func loadFBX(path string) (*scene.Scene, error) {
	doc, err := fbx.Load(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	imp := &fbxImporter{
		doc:      doc,
		scene:    scene.NewScene(name),
		dir:      filepath.Dir(path),
		matIndex: map[*fbx.Node]int{},
		imgIndex: map[string]int{},
		boneIdx:  map[int64]int{},
	}
	return imp.load()
}

func (imp *fbxImporter) load() (*scene.Scene, error) {
	upAxis := 2
	if gs := imp.doc.Root.FindChild("GlobalSettings"); gs != nil {
		if p := fbx.Property70(gs, "UpAxis"); len(p) > 0 {
			upAxis = int(p[0].ToInt64(2))
		}
	}
	identity := geom.NewMatrix4()
	for _, m := range imp.doc.RootModels() {
		imp.walkModel(m, identity, -1)
	}
	if upAxis == 1 {
		// y-up source file; internal convention is z-up
		for _, m := range imp.scene.Meshes {
			m.Transform(func(v *geom.Vector3) { *v = *yupToZup(v) })
			for i := range m.Normals {
				m.Normals[i] = yupToZup(m.Normals[i])
			}
			m.Translation = *yupToZup(&m.Translation)
		}
	}
	if objects := imp.doc.Root.FindChild("Objects"); objects != nil {
		for _, n := range objects.FindChildren("AnimationStack") {
			imp.scene.Animations = append(imp.scene.Animations, fbx.ObjectName(n))
		}
	}
	if len(imp.scene.Meshes) == 0 {
		return nil, fmt.Errorf("no meshes in document")
	}
	return imp.scene, nil
}

func (imp *fbxImporter) walkModel(n *fbx.Node, parent *geom.Matrix4, parentBone int) {
	id := n.AttrInt64(0, 0)
	kind := fbx.ObjectKind(n)

	translation := fbx.Property70Vec3(n, "Lcl Translation", &geom.Vector3{})
	rotation := fbx.Property70Vec3(n, "Lcl Rotation", &geom.Vector3{})
	scaling := fbx.Property70Vec3(n, "Lcl Scaling", &geom.Vector3{X: 1, Y: 1, Z: 1})

	tr := geom.NewTranslateMatrix4(translation.X, translation.Y, translation.Z)
	rot := geom.NewEulerRotationMatrix4(
		rotation.X*math.Pi/180, rotation.Y*math.Pi/180, rotation.Z*math.Pi/180)
	sc := geom.NewScaleMatrix4(scaling.X, scaling.Y, scaling.Z)
	world := parent.Mul(tr).Mul(rot).Mul(sc)

	boneIndex := parentBone
	if kind == "LimbNode" {
		boneIndex = imp.addBone(n, id, parentBone, translation)
	} else if g := imp.doc.Refs(id, "Geometry"); len(g) > 0 {
		imp.addGeometry(n, id, g[0], world, parentBone >= 0)
	}

	for _, child := range imp.doc.Refs(id, "Model") {
		imp.walkModel(child, world, boneIndex)
	}
}

func (imp *fbxImporter) addBone(n *fbx.Node, id int64, parent int, translation *geom.Vector3) int {
	if imp.scene.Armature == nil {
		imp.scene.Armature = &scene.Armature{Name: "Armature"}
	}
	bone := &scene.Bone{Name: fbx.ObjectName(n), Parent: parent, Translation: *translation}
	imp.scene.Armature.Bones = append(imp.scene.Armature.Bones, bone)
	idx := len(imp.scene.Armature.Bones) - 1
	imp.boneIdx[id] = idx
	return idx
}

func (imp *fbxImporter) addGeometry(model *fbx.Node, modelID int64, g *fbx.Node, world *geom.Matrix4, underArmature bool) {
	vertices := g.FindChild("Vertices").Attr(0).ToVec3Array()
	faces := fbx.Faces(g.FindChild("PolygonVertexIndex").Attr(0).ToInt32Array())
	if len(vertices) == 0 || len(faces) == 0 {
		return
	}

	matRemap := imp.modelMaterials(modelID)
	matByPolygon, matAllSame := layerMaterials(g, len(faces))
	normals, normalsByVertex := layerNormals(g)
	uvs, uvIndex, uvsByVertex := layerUV(g)

	geomID := g.AttrInt64(0, 0)
	if len(imp.doc.Refs(geomID, "Deformer")) > 0 {
		logging.Warnf("model %s: skin weights are not converted", fbx.ObjectName(model))
	}

	mesh := &scene.Mesh{Name: fbx.ObjectName(model), ParentIsArmature: underArmature}
	mesh.Translation = geom.Vector3{X: world[12], Y: world[13], Z: world[14]}

	// split per polygon corner; the weld pass merges coincident vertices later
	corner := 0
	for fi, face := range faces {
		mat := 0
		if matByPolygon != nil {
			mat = int(matByPolygon[fi])
		} else if matAllSame != nil {
			mat = int(*matAllSame)
		}
		if mat >= 0 && mat < len(matRemap) {
			mat = matRemap[mat]
		} else if len(matRemap) > 0 {
			mat = matRemap[0]
		}
		base := len(mesh.Vertices)
		for ci, vi := range face {
			if vi < 0 || vi >= len(vertices) {
				continue
			}
			mesh.Vertices = append(mesh.Vertices, world.ApplyToDir(vertices[vi]))
			if normals != nil {
				ni := corner + ci
				if normalsByVertex {
					ni = vi
				}
				if ni < len(normals) {
					n := world.ApplyToDir(normals[ni])
					n.Normalize()
					mesh.Normals = append(mesh.Normals, n)
				}
			}
			if uvs != nil {
				ui := corner + ci
				if uvsByVertex {
					ui = vi
				}
				if uvIndex != nil {
					if ui < len(uvIndex) {
						ui = int(uvIndex[ui])
					} else {
						ui = -1
					}
				}
				if ui >= 0 && ui < len(uvs) {
					mesh.UVs = append(mesh.UVs, geom.Vector2{X: uvs[ui].X, Y: 1 - uvs[ui].Y})
				} else {
					mesh.UVs = append(mesh.UVs, geom.Vector2{})
				}
			}
		}
		for i := 2; i < len(face); i++ {
			mesh.Triangles = append(mesh.Triangles, scene.Triangle{
				V: [3]int{base, base + i - 1, base + i}, Material: mat})
		}
		corner += len(face)
	}
	imp.scene.Meshes = append(imp.scene.Meshes, mesh)
}

// modelMaterials registers the model's material references in the scene and
// returns the local-to-scene material index mapping.
func (imp *fbxImporter) modelMaterials(modelID int64) []int {
	var remap []int
	for _, m := range imp.doc.Refs(modelID, "Material") {
		if idx, ok := imp.matIndex[m]; ok {
			remap = append(remap, idx)
			continue
		}
		mat := scene.NewMaterial(fbx.ObjectName(m))
		if c := fbx.Property70(m, "DiffuseColor"); len(c) >= 3 {
			mat.BaseColor.X = c[0].ToFloat32(1)
			mat.BaseColor.Y = c[1].ToFloat32(1)
			mat.BaseColor.Z = c[2].ToFloat32(1)
		}
		if o := fbx.Property70(m, "Opacity"); len(o) > 0 {
			mat.BaseColor.W = o[0].ToFloat32(1)
		}
		matID := m.AttrInt64(0, 0)
		for _, t := range imp.doc.Refs(matID, "Texture") {
			filename := t.FindChild("RelativeFilename").AttrString(0)
			if filename == "" {
				continue
			}
			if idx := imp.loadTextureFile(filename); idx >= 0 {
				i := idx
				mat.BaseColorTexture = &i
				break
			}
		}
		imp.scene.Materials = append(imp.scene.Materials, mat)
		imp.matIndex[m] = len(imp.scene.Materials) - 1
		remap = append(remap, imp.matIndex[m])
	}
	return remap
}

func (imp *fbxImporter) loadTextureFile(filename string) int {
	if idx, ok := imp.imgIndex[filename]; ok {
		return idx
	}
	path := filename
	if !filepath.IsAbs(path) {
		path = filepath.Join(imp.dir, filepath.FromSlash(filename))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logging.Warnf("texture %s: %v", filename, err)
		imp.imgIndex[filename] = -1
		return -1
	}
	img, format, err := decodeImageBytes(data, filepath.Ext(path))
	if err != nil {
		logging.Warnf("texture %s: %v", filename, err)
		imp.imgIndex[filename] = -1
		return -1
	}
	// raw bytes are only reusable for formats glTF can embed
	if format != "png" && format != "jpeg" {
		data = nil
	}
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	imp.scene.Images = append(imp.scene.Images, &scene.Image{
		Name: name, MimeType: "image/" + format, Image: img, Data: data,
	})
	imp.imgIndex[filename] = len(imp.scene.Images) - 1
	return imp.imgIndex[filename]
}

func layerMaterials(g *fbx.Node, faceCount int) ([]int32, *int32) {
	n := g.FindChild("LayerElementMaterial")
	if n == nil {
		return nil, nil
	}
	mats := n.FindChild("Materials").Attr(0).ToInt32Array()
	switch n.FindChild("MappingInformationType").AttrString(0) {
	case "ByPolygon":
		if len(mats) == faceCount {
			return mats, nil
		}
	case "AllSame":
		if len(mats) > 0 {
			return nil, &mats[0]
		}
	}
	return nil, nil
}

func layerNormals(g *fbx.Node) ([]*geom.Vector3, bool) {
	n := g.FindChild("LayerElementNormal")
	if n == nil {
		return nil, false
	}
	normals := n.FindChild("Normals").Attr(0).ToVec3Array()
	byVertex := n.FindChild("MappingInformationType").AttrString(0) == "ByVertice"
	return normals, byVertex
}

func layerUV(g *fbx.Node) ([]*geom.Vector2, []int32, bool) {
	n := g.FindChild("LayerElementUV")
	if n == nil {
		return nil, nil, false
	}
	uv := n.FindChild("UV").Attr(0).ToVec2Array()
	if uv == nil {
		return nil, nil, false
	}
	var uvIndex []int32
	if n.FindChild("ReferenceInformationType").AttrString(0) == "IndexToDirect" {
		uvIndex = n.FindChild("UVIndex").Attr(0).ToInt32Array()
	}
	byVertex := n.FindChild("MappingInformationType").AttrString(0) == "ByVertice"
	return uv, uvIndex, byVertex
}
