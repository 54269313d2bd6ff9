package modelio

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"image/png"
	"math"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/vibe3d/lowpoly/geom"
	"github.com/vibe3d/lowpoly/logging"
	"github.com/vibe3d/lowpoly/scene"
)

// ExportOptions control glTF serialization. Quantization is applied by
// snapping attribute values to a fixed number of fractional bits before
// writing, trading precision for compressibility.
type ExportOptions struct {
	PositionQuantBits int
	NormalQuantBits   int
	TexcoordQuantBits int

	// Tangents enables per-vertex tangent generation for normal mapping.
	Tangents bool

	// ImageFormat is "AUTO" (keep source encoding) or "JPEG" (re-encode
	// every texture as JPEG at JPEGQuality).
	ImageFormat string
	JPEGQuality int
}

func DefaultExportOptions() *ExportOptions {
	return &ExportOptions{
		PositionQuantBits: 14,
		NormalQuantBits:   10,
		TexcoordQuantBits: 12,
		Tangents:          true,
		ImageFormat:       "AUTO",
		JPEGQuality:       90,
	}
}

func quantize(v float32, bits int) float32 {
	if bits <= 0 || bits >= 23 {
		return v
	}
	s := float64(uint32(1) << uint(bits))
	return float32(math.Round(float64(v)*s) / s)
}

type gltfExporter struct {
	*gltf.Document
	opt *ExportOptions

	imageTexture map[int]uint32 // scene image index -> gltf texture index
	boneNode     map[int]uint32 // bone index -> gltf node index
	skin         *uint32
}

func saveGLTF(s *scene.Scene, path string, opt *ExportOptions) error {
	if opt == nil {
		opt = DefaultExportOptions()
	}
	e := &gltfExporter{
		Document:     gltf.NewDocument(),
		opt:          opt,
		imageTexture: map[int]uint32{},
		boneNode:     map[int]uint32{},
	}
	if err := e.addImages(s); err != nil {
		return err
	}
	e.addMaterials(s)
	e.addArmature(s)
	for _, m := range s.Meshes {
		e.addMesh(s, m)
	}
	if len(e.Document.Textures) > 0 {
		e.Document.Samplers = []*gltf.Sampler{{}}
	}
	if strings.ToLower(filepath.Ext(path)) == ".glb" {
		return gltf.SaveBinary(e.Document, path)
	}
	return gltf.Save(e.Document, path)
}

func (e *gltfExporter) addImages(s *scene.Scene) error {
	for i, img := range s.Images {
		data, mime, err := encodeImage(img, e.opt)
		if err != nil {
			return fmt.Errorf("encode image %s: %w", img.Name, err)
		}
		idx, err := modeler.WriteImage(e.Document, img.Name, mime, bytes.NewReader(data))
		if err != nil {
			return err
		}
		// keep the buffer length in sync after WriteImage
		e.Buffers[0].ByteLength = uint32(len(e.Buffers[0].Data))
		e.Document.Textures = append(e.Document.Textures,
			&gltf.Texture{Sampler: gltf.Index(0), Source: gltf.Index(idx)})
		e.imageTexture[i] = uint32(len(e.Document.Textures) - 1)
	}
	return nil
}

func encodeImage(img *scene.Image, opt *ExportOptions) ([]byte, string, error) {
	forceJPEG := opt.ImageFormat == "JPEG" && img.MimeType != "image/jpeg"
	if img.Data != nil && !forceJPEG {
		return img.Data, img.MimeType, nil
	}
	if img.Image == nil {
		return nil, "", fmt.Errorf("no pixel data")
	}
	w := new(bytes.Buffer)
	if opt.ImageFormat == "JPEG" {
		if err := jpeg.Encode(w, img.Image, &jpeg.Options{Quality: opt.JPEGQuality}); err != nil {
			return nil, "", err
		}
		return w.Bytes(), "image/jpeg", nil
	}
	if img.MimeType == "image/jpeg" {
		if err := jpeg.Encode(w, img.Image, &jpeg.Options{Quality: opt.JPEGQuality}); err != nil {
			return nil, "", err
		}
		return w.Bytes(), "image/jpeg", nil
	}
	if err := png.Encode(w, img.Image); err != nil {
		return nil, "", err
	}
	return w.Bytes(), "image/png", nil
}

func (e *gltfExporter) addMaterials(s *scene.Scene) {
	for _, mat := range s.Materials {
		metallic := mat.Metallic
		roughness := mat.Roughness
		mm := &gltf.Material{
			Name: mat.Name,
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &[4]float32{mat.BaseColor.X, mat.BaseColor.Y, mat.BaseColor.Z, mat.BaseColor.W},
				MetallicFactor:  &metallic,
				RoughnessFactor: &roughness,
			},
			DoubleSided: mat.DoubleSided,
		}
		if mat.BaseColor.W < 0.99 {
			mm.AlphaMode = gltf.AlphaBlend
		}
		if mat.BaseColorTexture != nil {
			if tex, ok := e.imageTexture[*mat.BaseColorTexture]; ok {
				mm.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: tex}
			}
		}
		if mat.NormalTexture != nil {
			if tex, ok := e.imageTexture[*mat.NormalTexture]; ok {
				mm.NormalTexture = &gltf.NormalTexture{Index: gltf.Index(tex)}
			}
		}
		e.Document.Materials = append(e.Document.Materials, mm)
	}
}

func (e *gltfExporter) addArmature(s *scene.Scene) {
	arm := s.Armature
	if arm == nil {
		return
	}
	skinned := false
	for _, m := range s.Meshes {
		if m.Skinned() {
			skinned = true
			break
		}
	}
	for i, b := range arm.Bones {
		local := b.Translation
		if b.Parent < 0 {
			local = *local.Add(&arm.Translation)
		}
		t := zupToYup(&local)
		node := &gltf.Node{Name: b.Name, Translation: [3]float32{t.X, t.Y, t.Z}, Rotation: [4]float32{0, 0, 0, 1}}
		e.boneNode[i] = uint32(len(e.Nodes))
		e.Nodes = append(e.Nodes, node)
	}
	for i, b := range arm.Bones {
		if b.Parent >= 0 {
			parent := e.Nodes[e.boneNode[b.Parent]]
			parent.Children = append(parent.Children, e.boneNode[i])
		} else {
			e.Scenes[0].Nodes = append(e.Scenes[0].Nodes, e.boneNode[i])
		}
	}
	if !skinned {
		return
	}
	joints := make([]uint32, len(arm.Bones))
	invmats := make([][4][4]float32, len(arm.Bones))
	for i := range arm.Bones {
		joints[i] = e.boneNode[i]
		world := boneWorld(arm, i)
		t := zupToYup(&world)
		invmats[i] = [4][4]float32{
			{1, 0, 0, 0},
			{0, 1, 0, 0},
			{0, 0, 1, 0},
			{-t.X, -t.Y, -t.Z, 1},
		}
	}
	e.Skins = append(e.Skins, &gltf.Skin{
		Joints:              joints,
		InverseBindMatrices: gltf.Index(e.addMatrices(invmats)),
	})
	e.skin = gltf.Index(uint32(len(e.Skins) - 1))
}

func boneWorld(arm *scene.Armature, i int) geom.Vector3 {
	world := arm.Bones[i].Translation
	for p := arm.Bones[i].Parent; p >= 0; p = arm.Bones[p].Parent {
		world = *world.Add(&arm.Bones[p].Translation)
	}
	return *world.Add(&arm.Translation)
}

func (e *gltfExporter) addMatrices(mat [][4][4]float32) uint32 {
	a := make([][4]float32, len(mat)*4)
	for i, m := range mat {
		a[i*4+0] = m[0]
		a[i*4+1] = m[1]
		a[i*4+2] = m[2]
		a[i*4+3] = m[3]
	}
	acc := modeler.WriteTangent(e.Document, a)
	e.Accessors[acc].Type = gltf.AccessorMat4
	e.Accessors[acc].Count /= 4
	e.BufferViews[*e.Accessors[acc].BufferView].ByteStride *= 4
	return acc
}

func (e *gltfExporter) addMesh(s *scene.Scene, m *scene.Mesh) {
	opt := e.opt
	vertices := make([][3]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		y := zupToYup(v)
		vertices[i] = [3]float32{
			quantize(y.X, opt.PositionQuantBits),
			quantize(y.Y, opt.PositionQuantBits),
			quantize(y.Z, opt.PositionQuantBits),
		}
	}
	attributes := map[string]uint32{
		"POSITION": modeler.WritePosition(e.Document, vertices),
	}
	if len(m.Normals) == len(m.Vertices) && len(m.Normals) > 0 {
		normals := make([][3]float32, len(m.Normals))
		for i, v := range m.Normals {
			y := zupToYup(v)
			normals[i] = [3]float32{
				quantize(y.X, opt.NormalQuantBits),
				quantize(y.Y, opt.NormalQuantBits),
				quantize(y.Z, opt.NormalQuantBits),
			}
		}
		attributes["NORMAL"] = modeler.WriteNormal(e.Document, normals)
	}
	if len(m.UVs) == len(m.Vertices) && len(m.UVs) > 0 {
		uvs := make([][2]float32, len(m.UVs))
		for i, uv := range m.UVs {
			uvs[i] = [2]float32{
				quantize(uv.X, opt.TexcoordQuantBits),
				quantize(uv.Y, opt.TexcoordQuantBits),
			}
		}
		attributes["TEXCOORD_0"] = modeler.WriteTextureCoord(e.Document, uvs)
		if opt.Tangents && len(m.Normals) == len(m.Vertices) {
			if tangents := meshTangents(m); tangents != nil {
				attributes["TANGENT"] = modeler.WriteTangent(e.Document, tangents)
			}
		}
	}
	if m.Skinned() && e.skin != nil {
		attributes["JOINTS_0"] = modeler.WriteJoints(e.Document, m.Joints)
		attributes["WEIGHTS_0"] = modeler.WriteWeights(e.Document, m.Weights)
	}

	// one primitive per material, in first-use order
	indices := map[int][]uint32{}
	var order []int
	for _, t := range m.Triangles {
		if _, ok := indices[t.Material]; !ok {
			order = append(order, t.Material)
		}
		indices[t.Material] = append(indices[t.Material],
			uint32(t.V[0]), uint32(t.V[1]), uint32(t.V[2]))
	}
	var primitives []*gltf.Primitive
	for _, mat := range order {
		p := &gltf.Primitive{
			Indices:    gltf.Index(modeler.WriteIndices(e.Document, indices[mat])),
			Attributes: attributes,
		}
		if mat >= 0 && mat < len(s.Materials) {
			p.Material = gltf.Index(uint32(mat))
		}
		primitives = append(primitives, p)
	}
	if len(primitives) == 0 {
		logging.Debugf("mesh %s has no triangles, skipping", m.Name)
		return
	}

	e.Document.Meshes = append(e.Document.Meshes, &gltf.Mesh{Name: m.Name, Primitives: primitives})
	t := zupToYup(&m.Translation)
	node := &gltf.Node{
		Name:        m.Name,
		Mesh:        gltf.Index(uint32(len(e.Document.Meshes) - 1)),
		Translation: [3]float32{t.X, t.Y, t.Z},
		Rotation:    [4]float32{0, 0, 0, 1},
	}
	if m.Skinned() && e.skin != nil {
		node.Skin = e.skin
	}
	e.Nodes = append(e.Nodes, node)
	e.Scenes[0].Nodes = append(e.Scenes[0].Nodes, uint32(len(e.Nodes)-1))
}

// meshTangents derives per-vertex tangents from triangle UV gradients.
func meshTangents(m *scene.Mesh) [][4]float32 {
	tangents := make([]geom.Vector3, len(m.Vertices))
	for _, t := range m.Triangles {
		p0, p1, p2 := m.Vertices[t.V[0]], m.Vertices[t.V[1]], m.Vertices[t.V[2]]
		uv0, uv1, uv2 := m.UVs[t.V[0]], m.UVs[t.V[1]], m.UVs[t.V[2]]
		e1 := p1.Sub(p0)
		e2 := p2.Sub(p0)
		du1 := uv1.X - uv0.X
		dv1 := uv1.Y - uv0.Y
		du2 := uv2.X - uv0.X
		dv2 := uv2.Y - uv0.Y
		det := du1*dv2 - du2*dv1
		if det == 0 {
			continue
		}
		r := 1 / det
		tan := &geom.Vector3{
			X: (dv2*e1.X - dv1*e2.X) * r,
			Y: (dv2*e1.Y - dv1*e2.Y) * r,
			Z: (dv2*e1.Z - dv1*e2.Z) * r,
		}
		for _, vi := range t.V {
			tangents[vi] = *tangents[vi].Add(tan)
		}
	}
	out := make([][4]float32, len(tangents))
	for i := range tangents {
		v := tangents[i]
		if v.LenSqr() == 0 {
			v = geom.Vector3{X: 1}
		}
		v.Normalize()
		y := zupToYup(&v)
		out[i] = [4]float32{y.X, y.Y, y.Z, 1}
	}
	return out
}
