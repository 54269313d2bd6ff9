package fbx

import (
	"time"

	"github.com/vibe3d/lowpoly/geom"
)

// DocumentBuilder assembles an FBX node tree for export.
type DocumentBuilder struct {
	root        *Node
	objects     *Node
	connections *Node
	nextID      int64
}

func NewDocumentBuilder(creator string) *DocumentBuilder {
	objects := NewNode("Objects")
	connections := NewNode("Connections")
	header := NewNode("FBXHeaderExtension")
	header.Children = []*Node{
		NewNode("FBXHeaderVersion", int32(1003)),
		NewNode("FBXVersion", int32(7400)),
	}
	settings := NewNode("GlobalSettings")
	settings.Children = []*Node{
		NewNode("Version", int32(1000)),
		properties70(
			propNode("UpAxis", "int", "Integer", int64(2)),
			propNode("UpAxisSign", "int", "Integer", int64(1)),
			propNode("FrontAxis", "int", "Integer", int64(1)),
			propNode("UnitScaleFactor", "double", "Number", float64(1)),
		),
	}
	root := &Node{Name: "_FBX_ROOT"}
	root.Children = []*Node{
		header,
		NewNode("Creator", creator),
		NewNode("CreationTime", time.Now().Format("2006-01-02 15:04:05")),
		settings,
		NewNode("Definitions"),
		objects,
		connections,
	}
	return &DocumentBuilder{
		root:        root,
		objects:     objects,
		connections: connections,
		nextID:      1000,
	}
}

func properties70(props ...*Node) *Node {
	n := NewNode("Properties70")
	n.Children = props
	return n
}

func propNode(name, typ, label string, values ...interface{}) *Node {
	attrs := append([]interface{}{name, typ, label, ""}, values...)
	return NewNode("P", attrs...)
}

func (b *DocumentBuilder) add(n *Node) int64 {
	id := b.nextID
	b.nextID++
	n.Attributes = append([]*Attribute{{Value: id}}, n.Attributes...)
	b.objects.Children = append(b.objects.Children, n)
	return id
}

func (b *DocumentBuilder) Connect(from, to int64) {
	b.connections.Children = append(b.connections.Children, NewNode("C", "OO", from, to))
}

// AddModel adds a mesh model node and returns its id. Connect it to the
// scene with Connect(id, 0).
func (b *DocumentBuilder) AddModel(name string, translation *geom.Vector3) int64 {
	n := NewNode("Model", name+"\x00\x01Model", "Mesh")
	n.Children = []*Node{
		NewNode("Version", int32(232)),
		properties70(
			propNode("Lcl Translation", "Lcl Translation", "", float64(translation.X), float64(translation.Y), float64(translation.Z)),
		),
	}
	return b.add(n)
}

// AddGeometry adds a Geometry node holding triangulated polygons.
func (b *DocumentBuilder) AddGeometry(name string, vertices []*geom.Vector3, faces [][]int, normals []*geom.Vector3, uvs []*geom.Vector2, materials []int32) int64 {
	varray := make([]float64, 0, len(vertices)*3)
	for _, v := range vertices {
		varray = append(varray, float64(v.X), float64(v.Y), float64(v.Z))
	}
	var indices []int32
	for _, f := range faces {
		for _, i := range f {
			indices = append(indices, int32(i))
		}
		if len(f) > 0 {
			indices[len(indices)-1] = ^indices[len(indices)-1]
		}
	}
	n := NewNode("Geometry", name+"\x00\x01Geometry", "Mesh")
	n.Children = []*Node{
		NewNode("Vertices", varray),
		NewNode("PolygonVertexIndex", indices),
		NewNode("GeometryVersion", int32(124)),
	}
	layers := []*Node{NewNode("Version", int32(100))}
	if len(normals) > 0 {
		narray := make([]float64, 0, len(normals)*3)
		for _, v := range normals {
			narray = append(narray, float64(v.X), float64(v.Y), float64(v.Z))
		}
		el := NewNode("LayerElementNormal", int32(0))
		el.Children = []*Node{
			NewNode("MappingInformationType", "ByVertice"),
			NewNode("ReferenceInformationType", "Direct"),
			NewNode("Normals", narray),
		}
		n.Children = append(n.Children, el)
		layers = append(layers, layerElement("LayerElementNormal"))
	}
	if len(uvs) > 0 {
		uvarray := make([]float64, 0, len(uvs)*2)
		for _, v := range uvs {
			uvarray = append(uvarray, float64(v.X), float64(v.Y))
		}
		el := NewNode("LayerElementUV", int32(0))
		el.Children = []*Node{
			NewNode("MappingInformationType", "ByVertice"),
			NewNode("ReferenceInformationType", "Direct"),
			NewNode("UV", uvarray),
		}
		n.Children = append(n.Children, el)
		layers = append(layers, layerElement("LayerElementUV"))
	}
	if len(materials) > 0 {
		el := NewNode("LayerElementMaterial", int32(0))
		el.Children = []*Node{
			NewNode("MappingInformationType", "ByPolygon"),
			NewNode("ReferenceInformationType", "IndexToDirect"),
			NewNode("Materials", materials),
		}
		n.Children = append(n.Children, el)
		layers = append(layers, layerElement("LayerElementMaterial"))
	}
	layer := NewNode("Layer", int32(0))
	layer.Children = layers
	n.Children = append(n.Children, layer)
	return b.add(n)
}

func layerElement(typ string) *Node {
	el := NewNode("LayerElement")
	el.Children = []*Node{
		NewNode("Type", typ),
		NewNode("TypedIndex", int32(0)),
	}
	return el
}

// AddMaterial adds a Material node with a diffuse color.
func (b *DocumentBuilder) AddMaterial(name string, color *geom.Vector4) int64 {
	n := NewNode("Material", name+"\x00\x01Material", "")
	n.Children = []*Node{
		NewNode("Version", int32(102)),
		NewNode("ShadingModel", "lambert"),
		properties70(
			propNode("DiffuseColor", "Color", "", float64(color.X), float64(color.Y), float64(color.Z)),
			propNode("Opacity", "double", "Number", float64(color.W)),
		),
	}
	return b.add(n)
}

// AddTexture adds a file texture node referencing an external image.
func (b *DocumentBuilder) AddTexture(name, filename string) int64 {
	n := NewNode("Texture", name+"\x00\x01Texture", "")
	n.Children = []*Node{
		NewNode("Type", "TextureVideoClip"),
		NewNode("Version", int32(202)),
		NewNode("FileName", filename),
		NewNode("RelativeFilename", filename),
	}
	return b.add(n)
}

func (b *DocumentBuilder) Document() (*Document, error) {
	return BuildDocument(b.root)
}

// Root returns the assembled node tree.
func (b *DocumentBuilder) Root() *Node {
	return b.root
}
