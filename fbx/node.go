package fbx

import (
	"fmt"
	"io"
	"strings"

	"github.com/vibe3d/lowpoly/geom"
)

type Node struct {
	Name       string
	Attributes []*Attribute
	Children   []*Node
}

func NewNode(name string, values ...interface{}) *Node {
	n := &Node{Name: name}
	for _, v := range values {
		n.Attributes = append(n.Attributes, NewAttribute(v))
	}
	return n
}

func (n *Node) FindChild(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (n *Node) FindChildren(name string) []*Node {
	if n == nil {
		return nil
	}
	var r []*Node
	for _, c := range n.Children {
		if c.Name == name {
			r = append(r, c)
		}
	}
	return r
}

func (n *Node) Attr(i int) *Attribute {
	if n == nil || i >= len(n.Attributes) {
		return nil
	}
	return n.Attributes[i]
}

func (n *Node) AttrInt(i int, def int) int {
	return int(n.Attr(i).ToInt64(int64(def)))
}

func (n *Node) AttrInt64(i int, def int64) int64 {
	return n.Attr(i).ToInt64(def)
}

func (n *Node) AttrFloat(i int, def float32) float32 {
	return n.Attr(i).ToFloat32(def)
}

func (n *Node) AttrString(i int) string {
	return n.Attr(i).ToString("")
}

type Attribute struct {
	Value interface{}
	Count uint // element count for array values
}

func NewAttribute(v interface{}) *Attribute {
	switch a := v.(type) {
	case []int32:
		return &Attribute{Value: a, Count: uint(len(a))}
	case []int64:
		return &Attribute{Value: a, Count: uint(len(a))}
	case []float32:
		return &Attribute{Value: a, Count: uint(len(a))}
	case []float64:
		return &Attribute{Value: a, Count: uint(len(a))}
	case []byte:
		return &Attribute{Value: a, Count: uint(len(a))}
	}
	return &Attribute{Value: v}
}

func (a *Attribute) ToInt64(def int64) int64 {
	if a == nil {
		return def
	}
	switch v := a.Value.(type) {
	case byte:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	}
	return def
}

func (a *Attribute) ToFloat32(def float32) float32 {
	if a == nil {
		return def
	}
	switch v := a.Value.(type) {
	case float32:
		return v
	case float64:
		return float32(v)
	case int16:
		return float32(v)
	case int32:
		return float32(v)
	case int64:
		return float32(v)
	}
	return def
}

func (a *Attribute) ToString(def string) string {
	if a == nil {
		return def
	}
	switch v := a.Value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	}
	return def
}

func (a *Attribute) ToInt32Array() []int32 {
	if a == nil {
		return nil
	}
	switch vv := a.Value.(type) {
	case []int32:
		return vv
	case []int64:
		r := make([]int32, len(vv))
		for i, v := range vv {
			r[i] = int32(v)
		}
		return r
	}
	return nil
}

func (a *Attribute) ToFloat32Array() []float32 {
	if a == nil {
		return nil
	}
	switch vv := a.Value.(type) {
	case []float32:
		return vv
	case []float64:
		r := make([]float32, len(vv))
		for i, v := range vv {
			r[i] = float32(v)
		}
		return r
	case []int32:
		r := make([]float32, len(vv))
		for i, v := range vv {
			r[i] = float32(v)
		}
		return r
	case []int64:
		// the ASCII reader types an array without decimal points as ints
		r := make([]float32, len(vv))
		for i, v := range vv {
			r[i] = float32(v)
		}
		return r
	}
	return nil
}

func (a *Attribute) ToVec3Array() []*geom.Vector3 {
	f := a.ToFloat32Array()
	var vv []*geom.Vector3
	for i := 0; i+2 < len(f); i += 3 {
		vv = append(vv, &geom.Vector3{X: f[i], Y: f[i+1], Z: f[i+2]})
	}
	return vv
}

func (a *Attribute) ToVec2Array() []*geom.Vector2 {
	f := a.ToFloat32Array()
	var vv []*geom.Vector2
	for i := 0; i+1 < len(f); i += 2 {
		vv = append(vv, &geom.Vector2{X: f[i], Y: f[i+1]})
	}
	return vv
}

func (a *Attribute) String() string {
	switch v := a.Value.(type) {
	case string:
		// object names use "\x00\x01" between name and class in binary
		// files and "::" in ASCII
		return fmt.Sprintf("%q", strings.ReplaceAll(v, "\x00\x01", "::"))
	case []byte:
		return fmt.Sprintf("\"%v\"", v)
	default:
		return fmt.Sprint(v)
	}
}

var arrayReplacer = strings.NewReplacer("[", "a: ", "]", "", " ", ",")

// Dump writes the node in FBX ASCII form.
func (n *Node) Dump(w io.Writer, depth int) {
	indent := strings.Repeat("\t", depth)
	fmt.Fprint(w, indent, n.Name, ":")
	for i, a := range n.Attributes {
		sep := ","
		if i == 0 {
			sep = ""
		}
		if a.Count > 0 {
			fmt.Fprintf(w, "%s *%d {\n%s\t%s\n%s}", sep, a.Count, indent, arrayReplacer.Replace(a.String()), indent)
		} else {
			fmt.Fprint(w, sep, " ", a.String())
		}
	}
	if len(n.Children) > 0 || len(n.Attributes) == 0 {
		fmt.Fprintln(w, " {")
		for _, c := range n.Children {
			c.Dump(w, depth+1)
		}
		fmt.Fprintln(w, indent+"}")
	} else {
		fmt.Fprintln(w)
	}
}
