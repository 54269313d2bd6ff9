package modelio

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "github.com/blezek/tga"
	_ "github.com/oov/psd"
	_ "golang.org/x/image/bmp"

	"github.com/vibe3d/lowpoly/geom"
	"github.com/vibe3d/lowpoly/logging"
	"github.com/vibe3d/lowpoly/scene"
)

// glTF stores y-up coordinates; the scene model is z-up.
func yupToZup(v *geom.Vector3) *geom.Vector3 {
	return &geom.Vector3{X: v.X, Y: -v.Z, Z: v.Y}
}

func zupToYup(v *geom.Vector3) *geom.Vector3 {
	return &geom.Vector3{X: v.X, Y: v.Z, Z: -v.Y}
}

func loadGLTF(path string) (*scene.Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, err
	}
	return buildScene(doc, filepath.Dir(path), strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

func buildScene(doc *gltf.Document, srcDir, name string) (*scene.Scene, error) {
	s := scene.NewScene(name)

	imageIndex := map[uint32]int{}
	for i, img := range doc.Images {
		si, err := loadImage(doc, img, srcDir)
		if err != nil {
			logging.Warnf("image %s: %v", img.Name, err)
			continue
		}
		imageIndex[uint32(i)] = len(s.Images)
		s.Images = append(s.Images, si)
	}

	textureImage := func(texIndex uint32) *int {
		if int(texIndex) >= len(doc.Textures) || doc.Textures[texIndex].Source == nil {
			return nil
		}
		if idx, ok := imageIndex[*doc.Textures[texIndex].Source]; ok {
			i := idx
			return &i
		}
		return nil
	}

	for _, m := range doc.Materials {
		mat := scene.NewMaterial(m.Name)
		mat.DoubleSided = m.DoubleSided
		if pbr := m.PBRMetallicRoughness; pbr != nil {
			col := pbr.BaseColorFactorOrDefault()
			mat.BaseColor = geom.Vector4{X: col[0], Y: col[1], Z: col[2], W: col[3]}
			mat.Metallic = pbr.MetallicFactorOrDefault()
			mat.Roughness = pbr.RoughnessFactorOrDefault()
			if pbr.BaseColorTexture != nil {
				mat.BaseColorTexture = textureImage(pbr.BaseColorTexture.Index)
			}
		}
		if m.NormalTexture != nil && m.NormalTexture.Index != nil {
			mat.NormalTexture = textureImage(*m.NormalTexture.Index)
		}
		s.Materials = append(s.Materials, mat)
	}

	for _, a := range doc.Animations {
		s.Animations = append(s.Animations, a.Name)
	}

	if len(doc.Skins) > 0 {
		s.Armature = buildArmature(doc, doc.Skins[0])
	}

	var sceneNodes []uint32
	if len(doc.Scenes) > 0 {
		si := 0
		if doc.Scene != nil {
			si = int(*doc.Scene)
		}
		sceneNodes = doc.Scenes[si].Nodes
	}
	for _, n := range sceneNodes {
		if err := buildNode(doc, s, n, geom.NewMatrix4()); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func nodeMatrix(n *gltf.Node) *geom.Matrix4 {
	if n.MatrixOrDefault() != gltf.DefaultMatrix {
		m := geom.Matrix4{}
		for i, v := range n.MatrixOrDefault() {
			m[i] = v
		}
		return &m
	}
	rot := n.Rotation
	if rot == ([4]float32{}) {
		rot = [4]float32{0, 0, 0, 1}
	}
	sc := n.Scale
	if sc == ([3]float32{}) {
		sc = [3]float32{1, 1, 1}
	}
	t := geom.NewTranslateMatrix4(n.Translation[0], n.Translation[1], n.Translation[2])
	r := geom.NewRotationMatrix4FromQuaternion(rot[0], rot[1], rot[2], rot[3])
	sm := geom.NewScaleMatrix4(sc[0], sc[1], sc[2])
	return t.Mul(r).Mul(sm)
}

func buildNode(doc *gltf.Document, s *scene.Scene, index uint32, parent *geom.Matrix4) error {
	n := doc.Nodes[index]
	world := parent.Mul(nodeMatrix(n))
	if n.Mesh != nil {
		mesh, err := buildMesh(doc, doc.Meshes[*n.Mesh], n.Name, world)
		if err != nil {
			return err
		}
		if n.Skin != nil {
			mesh.ParentIsArmature = true
		}
		s.Meshes = append(s.Meshes, mesh)
	}
	for _, c := range n.Children {
		if err := buildNode(doc, s, c, world); err != nil {
			return err
		}
	}
	return nil
}

func buildMesh(doc *gltf.Document, m *gltf.Mesh, nodeName string, world *geom.Matrix4) (*scene.Mesh, error) {
	mesh := &scene.Mesh{Name: m.Name}
	if mesh.Name == "" {
		mesh.Name = nodeName
	}
	// node translation becomes the object transform, the rest of the node
	// matrix is baked into the vertices
	translation := &geom.Vector3{X: world[12], Y: world[13], Z: world[14]}
	mesh.Translation = *yupToZup(translation)

	for _, p := range m.Primitives {
		if p.Indices == nil {
			continue
		}
		posAttr, ok := p.Attributes["POSITION"]
		if !ok {
			continue
		}
		base := len(mesh.Vertices)
		pos, err := modeler.ReadPosition(doc, doc.Accessors[posAttr], [][3]float32{})
		if err != nil {
			return nil, fmt.Errorf("read positions: %w", err)
		}
		for _, v := range pos {
			local := world.ApplyToDir(geom.NewVector3FromArray(v))
			mesh.Vertices = append(mesh.Vertices, yupToZup(local))
		}
		if a, ok := p.Attributes["NORMAL"]; ok {
			normals, err := modeler.ReadNormal(doc, doc.Accessors[a], [][3]float32{})
			if err == nil {
				ensureLen(&mesh.Normals, base)
				for _, v := range normals {
					dir := world.ApplyToDir(geom.NewVector3FromArray(v)).Normalize()
					mesh.Normals = append(mesh.Normals, yupToZup(dir))
				}
			}
		}
		if a, ok := p.Attributes["TEXCOORD_0"]; ok {
			uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[a], [][2]float32{})
			if err == nil {
				for len(mesh.UVs) < base {
					mesh.UVs = append(mesh.UVs, geom.Vector2{})
				}
				for _, uv := range uvs {
					mesh.UVs = append(mesh.UVs, geom.Vector2{X: uv[0], Y: uv[1]})
				}
			}
		}
		if a, ok := p.Attributes["JOINTS_0"]; ok {
			joints, err := modeler.ReadJoints(doc, doc.Accessors[a], [][4]uint16{})
			if err == nil {
				for len(mesh.Joints) < base {
					mesh.Joints = append(mesh.Joints, [4]uint16{})
				}
				mesh.Joints = append(mesh.Joints, joints...)
			}
		}
		if a, ok := p.Attributes["WEIGHTS_0"]; ok {
			weights, err := modeler.ReadWeights(doc, doc.Accessors[a], [][4]float32{})
			if err == nil {
				for len(mesh.Weights) < base {
					mesh.Weights = append(mesh.Weights, [4]float32{})
				}
				mesh.Weights = append(mesh.Weights, weights...)
			}
		}

		indices, err := modeler.ReadIndices(doc, doc.Accessors[*p.Indices], []uint32{})
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
		material := -1
		if p.Material != nil {
			material = int(*p.Material)
		}
		for i := 0; i+2 < len(indices); i += 3 {
			mesh.Triangles = append(mesh.Triangles, scene.Triangle{
				V:        [3]int{base + int(indices[i]), base + int(indices[i+1]), base + int(indices[i+2])},
				Material: material,
			})
		}
	}
	return mesh, nil
}

func ensureLen(vv *[]*geom.Vector3, n int) {
	for len(*vv) < n {
		*vv = append(*vv, &geom.Vector3{Z: 1})
	}
}

func buildArmature(doc *gltf.Document, skin *gltf.Skin) *scene.Armature {
	arm := &scene.Armature{Name: skin.Name}
	if arm.Name == "" {
		arm.Name = "Armature"
	}
	nodeToBone := map[uint32]int{}
	for i, j := range skin.Joints {
		n := doc.Nodes[j]
		t := yupToZup(&geom.Vector3{X: n.Translation[0], Y: n.Translation[1], Z: n.Translation[2]})
		arm.Bones = append(arm.Bones, &scene.Bone{Name: n.Name, Parent: -1, Translation: *t})
		nodeToBone[j] = i
	}
	for _, j := range skin.Joints {
		for _, c := range doc.Nodes[j].Children {
			if b, ok := nodeToBone[c]; ok {
				arm.Bones[b].Parent = nodeToBone[j]
			}
		}
	}
	return arm
}

func loadImage(doc *gltf.Document, img *gltf.Image, srcDir string) (*scene.Image, error) {
	var data []byte
	mime := img.MimeType
	if img.BufferView != nil {
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer].Data
		if int(bv.ByteOffset+bv.ByteLength) > len(buf) {
			return nil, fmt.Errorf("image %s: buffer view out of range", img.Name)
		}
		data = buf[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
	} else if img.URI != "" {
		b, err := os.ReadFile(filepath.Join(srcDir, img.URI))
		if err != nil {
			return nil, err
		}
		data = b
		if mime == "" {
			if strings.HasSuffix(strings.ToLower(img.URI), ".png") {
				mime = "image/png"
			} else {
				mime = "image/jpeg"
			}
		}
	} else {
		return nil, fmt.Errorf("image %s: no data", img.Name)
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	name := img.Name
	if name == "" {
		name = img.URI
	}
	return &scene.Image{Name: name, MimeType: mime, Image: decoded, Data: data}, nil
}
