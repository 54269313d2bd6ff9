// Package fbx reads and writes Autodesk FBX files. The binary reader covers
// the node record format (zlib-compressed arrays included); the writer and
// the secondary reader use the ASCII form.
package fbx

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

func Parse(r io.Reader) (*Document, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(len(binaryMagic))
	if err == nil && string(magic) == binaryMagic {
		p := binaryParser{r: &countingReader{r: br}}
		root, err := p.Parse()
		if err != nil {
			return nil, err
		}
		return BuildDocument(root)
	}
	root, err := newTextParser(br).Parse()
	if err != nil {
		return nil, err
	}
	return BuildDocument(root)
}

func Write(w io.Writer, root *Node) error {
	fmt.Fprintln(w, "; FBX 7.4.0 project file")
	fmt.Fprintln(w, "; ----------------------")
	for _, n := range root.Children {
		n.Dump(w, 0)
	}
	return nil
}

func Save(root *Node, path string) error {
	w, err := os.Create(path)
	if err != nil {
		return err
	}
	defer w.Close()
	return Write(w, root)
}
