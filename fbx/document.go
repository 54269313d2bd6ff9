package fbx

import (
	"github.com/vibe3d/lowpoly/geom"
)

type Connection struct {
	Type string
	From int64
	To   int64
}

// Document is a parsed FBX object graph. Objects are the children of the
// top-level Objects node, indexed by id; Connections resolve references
// between them.
type Document struct {
	Root    *Node
	Creator string

	Objects     map[int64]*Node
	Connections []Connection

	refs map[int64][]int64 // to -> from ids
}

func BuildDocument(root *Node) (*Document, error) {
	doc := &Document{
		Root:    root,
		Creator: root.FindChild("Creator").AttrString(0),
		Objects: map[int64]*Node{},
		refs:    map[int64][]int64{},
	}
	if objects := root.FindChild("Objects"); objects != nil {
		for _, node := range objects.Children {
			doc.Objects[node.AttrInt64(0, 0)] = node
		}
	}
	if connections := root.FindChild("Connections"); connections != nil {
		for _, node := range connections.Children {
			if node.Name != "C" {
				continue
			}
			c := Connection{
				Type: node.AttrString(0),
				From: node.AttrInt64(1, 0),
				To:   node.AttrInt64(2, 0),
			}
			doc.Connections = append(doc.Connections, c)
			doc.refs[c.To] = append(doc.refs[c.To], c.From)
		}
	}
	return doc, nil
}

// Refs returns the object nodes connected into id, optionally filtered by
// node name ("" for all).
func (d *Document) Refs(id int64, name string) []*Node {
	var r []*Node
	for _, from := range d.refs[id] {
		if n, ok := d.Objects[from]; ok && (name == "" || n.Name == name) {
			r = append(r, n)
		}
	}
	return r
}

// RootModels returns the Model nodes connected to the scene root (id 0).
func (d *Document) RootModels() []*Node {
	return d.Refs(0, "Model")
}

// ObjectName strips the class suffix ("\x00\x01Class" in binary files,
// "::Class" in ASCII) from an object name attribute.
func ObjectName(n *Node) string {
	s := n.AttrString(1)
	for i := 0; i+1 < len(s); i++ {
		if s[i] == 0 && s[i+1] == 1 || s[i] == ':' && s[i+1] == ':' {
			return s[:i]
		}
	}
	return s
}

// ObjectKind returns the subclass attribute ("Mesh", "LimbNode", ...).
func ObjectKind(n *Node) string {
	return n.AttrString(2)
}

// Property70 finds a Properties70 entry by name and returns its value
// attributes (index 4 onward).
func Property70(n *Node, name string) []*Attribute {
	props := n.FindChild("Properties70")
	if props == nil {
		return nil
	}
	for _, p := range props.Children {
		if p.Name == "P" && p.AttrString(0) == name {
			return p.Attributes[4:]
		}
	}
	return nil
}

func Property70Vec3(n *Node, name string, def *geom.Vector3) *geom.Vector3 {
	attrs := Property70(n, name)
	if len(attrs) < 3 {
		return def
	}
	return &geom.Vector3{
		X: attrs[0].ToFloat32(0),
		Y: attrs[1].ToFloat32(0),
		Z: attrs[2].ToFloat32(0),
	}
}

// Faces splits a PolygonVertexIndex attribute into polygons. The last index
// of each polygon is stored bitwise-negated.
func Faces(indices []int32) [][]int {
	var faces [][]int
	var face []int
	for _, index := range indices {
		if index < 0 {
			face = append(face, int(^index))
			faces = append(faces, face)
			face = nil
			continue
		}
		face = append(face, int(index))
	}
	return faces
}
