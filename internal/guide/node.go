package guide

import (
	"bytes"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// maxNestingDepth bounds how deep decoded page data may nest. It matches the
// limit encoding/json applies when unmarshalling.
const maxNestingDepth = 10000

// NodeKind tags the variant held by a Node.
type NodeKind int

const (
	// KindScalar holds a string, json.Number, float64, bool or nil.
	KindScalar NodeKind = iota
	// KindMapping holds string keys in document order.
	KindMapping
	// KindSequence holds ordered items.
	KindSequence
)

// Node is one value of decoded structured page data.
type Node struct {
	Kind   NodeKind
	Scalar any
	Keys   []string
	Fields map[string]*Node
	Items  []*Node
}

// Get returns the child stored under key of a mapping node.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.Kind != KindMapping {
		return nil, false
	}
	child, ok := n.Fields[key]
	return child, ok
}

// Truthy reports whether the node carries a meaningful value: non-empty
// strings and containers, non-zero numbers, true.
func (n *Node) Truthy() bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case KindMapping:
		return len(n.Keys) > 0
	case KindSequence:
		return len(n.Items) > 0
	}
	switch v := n.Scalar.(type) {
	case string:
		return v != ""
	case json.Number:
		f, err := v.Float64()
		return err != nil || f != 0
	case float64:
		return v != 0
	case bool:
		return v
	}
	return false
}

// Text renders the node as flat text. Mappings become "key value key value",
// sequences are joined with ", ", nil becomes "".
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case KindMapping:
		parts := make([]string, 0, len(n.Keys))
		for _, k := range n.Keys {
			parts = append(parts, k+" "+n.Fields[k].Text())
		}
		return strings.Join(parts, " ")
	case KindSequence:
		parts := make([]string, 0, len(n.Items))
		for _, item := range n.Items {
			parts = append(parts, item.Text())
		}
		return strings.Join(parts, ", ")
	}
	switch v := n.Scalar.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// DecodeNode parses a single JSON document, keeping mapping keys in document
// order. Numbers are kept as json.Number. A repeated key keeps its first
// position and its last value. Open containers live on an explicit stack and
// documents nested deeper than maxNestingDepth are rejected.
func DecodeNode(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var (
		root  *Node
		stack []*decodeFrame
	)
	for root == nil || len(stack) > 0 {
		tok, err := dec.Token()
		if err != nil {
			if stdErrors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}

		var top *decodeFrame
		if len(stack) > 0 {
			top = stack[len(stack)-1]
		}

		if delim, ok := tok.(json.Delim); ok && (delim == '}' || delim == ']') {
			if top == nil {
				return nil, fmt.Errorf("unexpected delimiter %v", delim)
			}
			stack = stack[:len(stack)-1]
			continue
		}

		if top != nil && top.wantKey {
			key, ok := tok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected object key %v", tok)
			}
			top.key = key
			top.wantKey = false
			continue
		}

		node := nodeForToken(tok)
		if top == nil {
			root = node
		} else {
			top.attach(node)
		}
		if node.Kind != KindScalar {
			if len(stack) >= maxNestingDepth {
				return nil, fmt.Errorf("document nested deeper than %d levels", maxNestingDepth)
			}
			stack = append(stack, &decodeFrame{node: node, wantKey: node.Kind == KindMapping})
		}
	}

	if _, err := dec.Token(); !stdErrors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return root, nil
}

// decodeFrame is an open mapping or sequence. For a mapping, wantKey is set
// while the next token is a key and key holds the key awaiting its value.
type decodeFrame struct {
	node    *Node
	key     string
	wantKey bool
}

func (f *decodeFrame) attach(child *Node) {
	if f.node.Kind == KindSequence {
		f.node.Items = append(f.node.Items, child)
		return
	}
	if _, exists := f.node.Fields[f.key]; !exists {
		f.node.Keys = append(f.node.Keys, f.key)
	}
	f.node.Fields[f.key] = child
	f.wantKey = true
}

// nestingDepth returns the deepest bracket nesting in a JSON-like text,
// ignoring brackets inside quoted strings.
func nestingDepth(text string) int {
	depth, deepest := 0, 0
	var quote byte
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '{', '[':
			depth++
			deepest = max(deepest, depth)
		case '}', ']':
			depth--
		}
	}
	return deepest
}

func nodeForToken(tok json.Token) *Node {
	switch tok {
	case json.Delim('{'):
		return &Node{Kind: KindMapping, Fields: make(map[string]*Node)}
	case json.Delim('['):
		return &Node{Kind: KindSequence}
	}
	return &Node{Kind: KindScalar, Scalar: tok}
}

// NodeFromValue converts a generically decoded value (map[string]any, []any,
// scalars) into a Node. Map keys are sorted since their source order is lost.
func NodeFromValue(v any) *Node {
	switch val := v.(type) {
	case map[string]any:
		node := &Node{Kind: KindMapping, Fields: make(map[string]*Node, len(val))}
		for k, child := range val {
			node.Keys = append(node.Keys, k)
			node.Fields[k] = NodeFromValue(child)
		}
		sort.Strings(node.Keys)
		return node
	case []any:
		node := &Node{Kind: KindSequence, Items: make([]*Node, 0, len(val))}
		for _, child := range val {
			node.Items = append(node.Items, NodeFromValue(child))
		}
		return node
	default:
		return &Node{Kind: KindScalar, Scalar: val}
	}
}
