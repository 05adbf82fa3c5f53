package swarm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// maxDepth bounds recursion while decoding. Real swarm payloads nest five or
// six levels deep; anything past this is adversarial input.
const maxDepth = 64

var ErrTooDeep = errors.New("swarm: document exceeds max nesting depth")

// Kind tags the variant a Node holds.
type Kind int

const (
	KindObject Kind = iota
	KindArray
	KindString
	KindNumber
	KindBool
	KindNull
)

// Field is one key/value entry of an object Node, in document order.
type Field struct {
	Key   string
	Value *Node
}

// Node is a decoded JSON value. Unlike map[string]any, object fields keep
// their document order, so traversal order is deterministic and "last
// occurrence wins" behaves the same on every run.
type Node struct {
	kind    Kind
	fields  []Field
	index   map[string]*Node
	elems   []*Node
	str     string
	num     string // number literal as it appeared in the document
	boolean bool
}

// Parse decodes a complete JSON document into a Node tree.
func Parse(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	n, err := parseValue(dec, 0)
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("swarm: trailing data after document")
	}
	return n, nil
}

func parseValue(dec *json.Decoder, depth int) (*Node, error) {
	if depth > maxDepth {
		return nil, ErrTooDeep
	}
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return parseObject(dec, depth)
		case '[':
			return parseArray(dec, depth)
		default:
			return nil, fmt.Errorf("swarm: unexpected delimiter %q", t)
		}
	case string:
		return &Node{kind: KindString, str: t}, nil
	case json.Number:
		return &Node{kind: KindNumber, num: string(t)}, nil
	case bool:
		return &Node{kind: KindBool, boolean: t}, nil
	case nil:
		return &Node{kind: KindNull}, nil
	default:
		return nil, fmt.Errorf("swarm: unexpected token %v", tok)
	}
}

func parseObject(dec *json.Decoder, depth int) (*Node, error) {
	n := &Node{kind: KindObject, index: make(map[string]*Node)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("swarm: object key is %T, not string", tok)
		}
		val, err := parseValue(dec, depth+1)
		if err != nil {
			return nil, err
		}
		if _, dup := n.index[key]; !dup {
			n.fields = append(n.fields, Field{Key: key, Value: val})
		} else {
			for i := range n.fields {
				if n.fields[i].Key == key {
					n.fields[i].Value = val
					break
				}
			}
		}
		n.index[key] = val
	}
	// consume closing brace
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return n, nil
}

func parseArray(dec *json.Decoder, depth int) (*Node, error) {
	n := &Node{kind: KindArray}
	for dec.More() {
		val, err := parseValue(dec, depth+1)
		if err != nil {
			return nil, err
		}
		n.elems = append(n.elems, val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return n, nil
}

// --- Accessors ---

func (n *Node) Kind() Kind {
	if n == nil {
		return KindNull
	}
	return n.kind
}

func (n *Node) IsObject() bool { return n != nil && n.kind == KindObject }
func (n *Node) IsArray() bool  { return n != nil && n.kind == KindArray }

// Field returns the value of an object field, or nil when n is not an object
// or the key is absent. Safe on nil receivers, so lookups chain.
func (n *Node) Field(key string) *Node {
	if n == nil || n.kind != KindObject {
		return nil
	}
	return n.index[key]
}

// Fields returns object fields in document order.
func (n *Node) Fields() []Field {
	if n == nil {
		return nil
	}
	return n.fields
}

// Elems returns array elements.
func (n *Node) Elems() []*Node {
	if n == nil {
		return nil
	}
	return n.elems
}

// Str returns the string value when n is a string node.
func (n *Node) Str() (string, bool) {
	if n == nil || n.kind != KindString {
		return "", false
	}
	return n.str, true
}

// Text stringifies scalar nodes: strings verbatim, numbers as their document
// literal, bools as true/false. Objects, arrays and null have no text form.
func (n *Node) Text() (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.kind {
	case KindString:
		return n.str, true
	case KindNumber:
		return n.num, true
	case KindBool:
		return strconv.FormatBool(n.boolean), true
	default:
		return "", false
	}
}

// Int coerces a scalar node to an integer the way the feed expects: numeric
// strings and floats truncate, anything malformed counts as zero.
func (n *Node) Int() int {
	if n == nil {
		return 0
	}
	switch n.kind {
	case KindNumber:
		return coerceInt(n.num)
	case KindString:
		return coerceInt(n.str)
	case KindBool:
		if n.boolean {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func coerceInt(s string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return int(f)
}

// Truthy reports whether the node carries a usable value: non-empty strings,
// non-zero numbers, true, non-empty objects and arrays.
func (n *Node) Truthy() bool {
	if n == nil {
		return false
	}
	switch n.kind {
	case KindObject:
		return len(n.fields) > 0
	case KindArray:
		return len(n.elems) > 0
	case KindString:
		return n.str != ""
	case KindNumber:
		f, err := strconv.ParseFloat(n.num, 64)
		return err == nil && f != 0
	case KindBool:
		return n.boolean
	default:
		return false
	}
}
