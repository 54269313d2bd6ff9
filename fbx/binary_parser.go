package fbx

import (
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
)

const binaryMagic = "Kaydara FBX Binary  "

type countingReader struct {
	r        io.Reader
	position int64
}

func (r *countingReader) Read(p []byte) (n int, err error) {
	n, err = r.r.Read(p)
	r.position += int64(n)
	return n, err
}

func (r *countingReader) SkipTo(pos int64) error {
	offset := pos - r.position
	if offset < 0 {
		return fmt.Errorf("fbx: cannot rewind to %d", pos)
	}
	if s, ok := r.r.(io.Seeker); ok {
		_, err := s.Seek(pos, io.SeekStart)
		r.position = pos
		return err
	}
	_, err := io.CopyN(io.Discard, r, offset)
	return err
}

type binaryParser struct {
	r   *countingReader
	err error
}

func (p *binaryParser) read(v interface{}) {
	if p.err == nil {
		p.err = binary.Read(p.r, binary.LittleEndian, v)
	}
}

func (p *binaryParser) readUint8() uint8 {
	var v uint8
	p.read(&v)
	return v
}

func (p *binaryParser) readUint32() uint32 {
	var v uint32
	p.read(&v)
	return v
}

func (p *binaryParser) readString(n uint) string {
	b := make([]byte, n)
	p.read(b)
	return string(b)
}

func (p *binaryParser) readArrayAttr(typ uint8) *Attribute {
	count := uint(p.readUint32())
	encoding := p.readUint32()
	sz := p.readUint32()
	var buf interface{}
	switch typ {
	case 'b':
		buf = make([]byte, count)
	case 'i':
		buf = make([]int32, count)
	case 'l':
		buf = make([]int64, count)
	case 'f':
		buf = make([]float32, count)
	case 'd':
		buf = make([]float64, count)
	default:
		p.err = fmt.Errorf("fbx: unknown array type: %c", typ)
		return nil
	}
	if encoding == 0 {
		p.read(buf)
	} else {
		next := p.r.position + int64(sz)
		zr, err := zlib.NewReader(io.LimitReader(p.r, int64(sz)))
		if err != nil {
			p.err = err
			return &Attribute{Value: buf, Count: count}
		}
		defer zr.Close()
		err = binary.Read(zr, binary.LittleEndian, buf)
		if p.err == nil {
			p.err = err
		}
		p.r.SkipTo(next)
	}
	return &Attribute{Value: buf, Count: count}
}

func (p *binaryParser) readAttr() *Attribute {
	typ := p.readUint8()
	switch typ {
	case 'B', 'C':
		return &Attribute{Value: p.readUint8()}
	case 'Y':
		var v int16
		p.read(&v)
		return &Attribute{Value: v}
	case 'I':
		var v int32
		p.read(&v)
		return &Attribute{Value: v}
	case 'L':
		var v int64
		p.read(&v)
		return &Attribute{Value: v}
	case 'F':
		var v float32
		p.read(&v)
		return &Attribute{Value: v}
	case 'D':
		var v float64
		p.read(&v)
		return &Attribute{Value: v}
	case 'S':
		return &Attribute{Value: p.readString(uint(p.readUint32()))}
	case 'R':
		buf := make([]byte, p.readUint32())
		p.read(buf)
		return &Attribute{Value: buf}
	case 'b', 'i', 'l', 'f', 'd':
		return p.readArrayAttr(typ)
	}
	p.err = fmt.Errorf("fbx: unknown attribute type: %v", typ)
	return nil
}

func (p *binaryParser) readNode() *Node {
	next := int64(p.readUint32())
	nattr := int(p.readUint32())
	attrsz := p.readUint32()
	name := p.readString(uint(p.readUint8()))

	if next == 0 {
		// NULL record terminating a child list
		return nil
	}
	if uint64(nattr)*2 > uint64(attrsz) {
		p.err = p.r.SkipTo(next)
		return nil
	}

	n := &Node{Name: name}
	for i := 0; i < nattr && p.err == nil; i++ {
		if a := p.readAttr(); a != nil {
			n.Attributes = append(n.Attributes, a)
		}
	}
	if p.err != nil && p.err != io.EOF {
		return nil
	}

	for p.r.position < next && p.err == nil {
		if child := p.readNode(); child != nil {
			n.Children = append(n.Children, child)
		}
	}
	if p.err == nil {
		p.err = p.r.SkipTo(next)
	}
	if p.err != nil && p.err != io.EOF {
		return nil
	}
	return n
}

func (p *binaryParser) Parse() (*Node, error) {
	if p.readString(20) != binaryMagic {
		return nil, fmt.Errorf("fbx: not a binary FBX file")
	}
	p.r.SkipTo(27) // 2 bytes unknown + 4 bytes version
	root := &Node{Name: "_FBX_ROOT"}
	for p.err == nil {
		if node := p.readNode(); node != nil {
			root.Children = append(root.Children, node)
		}
	}
	if p.err != nil && p.err != io.EOF {
		return nil, p.err
	}
	return root, nil
}
