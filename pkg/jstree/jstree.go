package jstree

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	apperrors "github.com/osmtree/osmtree/pkg/errors"
	"github.com/osmtree/osmtree/pkg/tree"
)

// Node is one widget node.
type Node struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	State    State    `json:"state"`
	Children Children `json:"children"`
}

// State holds the widget flags osmtree cares about.
type State struct {
	Opened   bool `json:"opened,omitempty"`
	Disabled bool `json:"disabled,omitempty"`
	Selected bool `json:"selected"`
}

// Child is either a nested node or a bare id. Exactly one of Node and ID is
// meaningful: ID is only used when Node is nil.
type Child struct {
	ID   string
	Node *Node
}

// NodeID returns the id of the child in either form.
func (c Child) NodeID() string {
	if c.Node != nil {
		return c.Node.ID
	}
	return c.ID
}

// UnmarshalJSON accepts a string id or a node object.
func (c *Child) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		c.Node = nil
		return json.Unmarshal(data, &c.ID)
	}
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	c.ID, c.Node = "", &n
	return nil
}

// MarshalJSON writes the node object, or the bare id when there is none.
func (c Child) MarshalJSON() ([]byte, error) {
	if c.Node != nil {
		return json.Marshal(c.Node)
	}
	return json.Marshal(c.ID)
}

// Children is a node's child list. jsTree uses `true` to mark nodes whose
// children are loaded lazily; that and null decode as an empty list.
type Children []Child

// UnmarshalJSON accepts an array, a boolean, or null.
func (cs *Children) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null", "true", "false":
		*cs = Children{}
		return nil
	}
	var list []Child
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	if list == nil {
		list = []Child{}
	}
	*cs = list
	return nil
}

// Decode reads widget JSON from r. The input may be an array of nodes or a
// single node. Malformed input yields an INVALID_INPUT error.
func Decode(r io.Reader) ([]*Node, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read tree")
	}

	dec := json.NewDecoder(br)
	switch first {
	case '[':
		var nodes []*Node
		if err := dec.Decode(&nodes); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode tree")
		}
		return compact(nodes), nil
	case '{':
		var n Node
		if err := dec.Decode(&n); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode tree")
		}
		return []*Node{&n}, nil
	default:
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "tree must be a JSON array or object, got %q", first)
	}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// peekNonSpace skips whitespace and a UTF-8 byte order mark and returns the
// next byte without consuming it.
func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF {
				return 0, fmt.Errorf("empty input")
			}
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case 0xEF:
			if rest, _ := br.Peek(2); bytes.Equal(rest, utf8BOM[1:]) {
				br.Discard(2)
				continue
			}
		}
		return b, br.UnreadByte()
	}
}

// compact drops null entries from a top-level array.
func compact(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Encode writes nodes as indented widget JSON.
func Encode(w io.Writer, nodes []*Node) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(nodes)
}

// ToTree converts widget nodes into tree nodes. Bare id children become
// unselected leaves that carry only their id.
func ToTree(nodes []*Node) []*tree.Node {
	out := make([]*tree.Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, toTree(n))
		}
	}
	return out
}

func toTree(n *Node) *tree.Node {
	kids := make([]*tree.Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Node != nil {
			kids = append(kids, toTree(c.Node))
			continue
		}
		kids = append(kids, &tree.Node{ID: c.ID, Children: []*tree.Node{}})
	}
	return &tree.Node{
		ID:       n.ID,
		Name:     n.Text,
		Selected: n.State.Selected,
		Children: kids,
	}
}

// FromTree converts tree nodes into widget nodes with object children.
func FromTree(nodes []*tree.Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, fromTree(n))
		}
	}
	return out
}

func fromTree(n *tree.Node) *Node {
	kids := make(Children, 0, len(n.Children))
	for _, c := range n.Children {
		if c != nil {
			kids = append(kids, Child{Node: fromTree(c)})
		}
	}
	return &Node{
		ID:       n.ID,
		Text:     n.Name,
		State:    State{Selected: n.Selected},
		Children: kids,
	}
}
