package fbx

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type tokenType int

const (
	tokenIdent tokenType = iota
	tokenNumber
	tokenString
	tokenOperator
	tokenBlockStart
	tokenBlockEnd
	tokenEOF
)

type textParser struct {
	r      *bufio.Reader
	err    error
	peeked bool
	ptyp   tokenType
	pval   string

	// pendingName is set when an attribute list runs into the name of the
	// next sibling node ("Name:" at the same depth).
	pendingName string
}

func newTextParser(r io.Reader) *textParser {
	return &textParser{r: bufio.NewReader(r)}
}

func (p *textParser) errorf(f string, a ...interface{}) {
	if p.err == nil {
		p.err = fmt.Errorf(f, a...)
	}
}

func (p *textParser) next() (tokenType, string) {
	if p.peeked {
		p.peeked = false
		return p.ptyp, p.pval
	}
	for p.err == nil {
		c, err := p.r.ReadByte()
		if err != nil {
			return tokenEOF, ""
		}
		switch {
		case c == ';':
			p.r.ReadString('\n')
		case c == '{':
			return tokenBlockStart, "{"
		case c == '}':
			return tokenBlockEnd, "}"
		case c == '*' || c == ':' || c == ',':
			return tokenOperator, string(c)
		case c >= '0' && c <= '9' || c == '.' || c == '-':
			buf := []byte{c}
			for {
				c, err = p.r.ReadByte()
				if err != nil {
					break
				}
				if c >= '0' && c <= '9' || c == '.' || c == 'e' || c == 'E' || c == '-' || c == '+' {
					buf = append(buf, c)
				} else {
					p.r.UnreadByte()
					break
				}
			}
			return tokenNumber, string(buf)
		case c == '"':
			var buf []byte
			for {
				c, err = p.r.ReadByte()
				if err != nil || c == '"' {
					break
				}
				buf = append(buf, c)
			}
			return tokenString, string(buf)
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			// skip
		default:
			buf := []byte{c}
			for {
				c, err = p.r.ReadByte()
				if err != nil {
					break
				}
				if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' {
					buf = append(buf, c)
				} else {
					p.r.UnreadByte()
					break
				}
			}
			return tokenIdent, string(buf)
		}
	}
	return tokenEOF, ""
}

func (p *textParser) peek() (tokenType, string) {
	if !p.peeked {
		p.ptyp, p.pval = p.next()
		p.peeked = true
	}
	return p.ptyp, p.pval
}

func parseNumberAttr(s string) *Attribute {
	if strings.ContainsAny(s, ".eE") {
		f, _ := strconv.ParseFloat(s, 64)
		return &Attribute{Value: f}
	}
	i, _ := strconv.ParseInt(s, 10, 64)
	return &Attribute{Value: i}
}

// readArray reads "*N { a: v,v,v }" after the '*' operator.
func (p *textParser) readArray() *Attribute {
	typ, v := p.next()
	if typ != tokenNumber {
		p.errorf("fbx: expected array size, got %q", v)
		return nil
	}
	count, _ := strconv.Atoi(v)
	if typ, v = p.next(); typ != tokenBlockStart {
		p.errorf("fbx: expected '{', got %q", v)
		return nil
	}
	// "a" ident and ':' operator
	p.next()
	p.next()
	var values []float64
	isFloat := false
	for {
		typ, v = p.next()
		if typ == tokenBlockEnd || typ == tokenEOF {
			break
		}
		if typ == tokenOperator {
			continue
		}
		if strings.ContainsAny(v, ".eE") {
			isFloat = true
		}
		f, _ := strconv.ParseFloat(v, 64)
		values = append(values, f)
	}
	if isFloat {
		return &Attribute{Value: values, Count: uint(count)}
	}
	ints := make([]int64, len(values))
	for i, f := range values {
		ints[i] = int64(f)
	}
	return &Attribute{Value: ints, Count: uint(count)}
}

func (p *textParser) parseNode(name string) *Node {
	n := &Node{Name: name}
	// attributes until block start or next node
	for p.err == nil {
		typ, v := p.peek()
		switch typ {
		case tokenNumber:
			p.next()
			n.Attributes = append(n.Attributes, parseNumberAttr(v))
		case tokenString:
			p.next()
			n.Attributes = append(n.Attributes, &Attribute{Value: v})
		case tokenIdent:
			// either a bare enum value (T, Y, W) or the next sibling node
			p.next()
			if t2, v2 := p.peek(); t2 == tokenOperator && v2 == ":" {
				p.next() // consume ':'
				p.pendingName = v
				return n
			}
			n.Attributes = append(n.Attributes, &Attribute{Value: v})
		case tokenOperator:
			p.next()
			if v == "*" {
				if a := p.readArray(); a != nil {
					n.Attributes = append(n.Attributes, a)
				}
			}
		case tokenBlockStart:
			p.next()
			p.parseChildren(n)
			return n
		default:
			return n
		}
	}
	return n
}

func (p *textParser) parseChildren(parent *Node) {
	for p.err == nil {
		var name string
		if p.pendingName != "" {
			name = p.pendingName
			p.pendingName = ""
		} else {
			typ, v := p.next()
			if typ == tokenBlockEnd || typ == tokenEOF {
				return
			}
			if typ != tokenIdent {
				continue
			}
			if typ2, _ := p.next(); typ2 != tokenOperator {
				p.errorf("fbx: expected ':' after %q", v)
				return
			}
			name = v
		}
		parent.Children = append(parent.Children, p.parseNode(name))
	}
}

func (p *textParser) Parse() (*Node, error) {
	root := &Node{Name: "_FBX_ROOT"}
	for p.err == nil {
		var name string
		if p.pendingName != "" {
			name = p.pendingName
			p.pendingName = ""
		} else {
			typ, v := p.next()
			if typ == tokenEOF {
				break
			}
			if typ != tokenIdent {
				continue
			}
			if typ2, _ := p.next(); typ2 != tokenOperator {
				p.errorf("fbx: expected ':' after %q", v)
				break
			}
			name = v
		}
		root.Children = append(root.Children, p.parseNode(name))
	}
	if p.err != nil && p.err != io.EOF {
		return nil, p.err
	}
	return root, nil
}
