// Package memscene is a self-contained in-memory implementation of the
// scene.Host interface: a node hierarchy with keyed channels, enum
// attributes, and space routing. It backs the CLI tools and the test
// suites in place of a live animation host.
package memscene

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Alehaaaa/camstool/internal/mathutil"
	"github.com/Alehaaaa/camstool/internal/scene"
)

// Key is a single keyframe on an attribute.
type Key struct {
	Time  float64
	Value float64
}

// Attr is one attribute of a node. Enum attributes evaluate stepped;
// everything else interpolates linearly between keys.
type Attr struct {
	Name    string
	Nice    string
	Enum    bool
	Options []string
	Value   float64 // static value, used when unkeyed
	Keys    []Key   // sorted by time
	Locked  bool
	Wired   bool // has an explicit incoming/outgoing connection
	User    bool // user-authored (listed by UserAttributes)

	// Spaces routes the node's parent source by enum option label.
	// An empty driver path means world space. Only meaningful on enums.
	Spaces map[string]string
}

// Node is one transform in the hierarchy, addressed by its full path.
type Node struct {
	Path   string
	Parent string // parent path, "" for roots

	attrs map[string]*Attr
	order []string // attribute declaration order
}

// Scene implements scene.Host over an in-memory node set.
type Scene struct {
	nodes     map[string]*Node
	nodeOrder []string

	current  float64
	playMin  float64
	playMax  float64
	selStart float64
	selEnd   float64
	selRange bool

	selection []string

	suspendDepth int
	undoDepth    int
}

// New returns an empty scene with a 1–120 playback range.
func New() *Scene {
	return &Scene{
		nodes:   make(map[string]*Node),
		playMin: 1,
		playMax: 120,
		current: 1,
	}
}

// Builtin channel names. SetWorldMatrix keys exactly these six.
var translateChannels = [3]string{"translateX", "translateY", "translateZ"}

var rotateOrderOptions = []string{"xyz", "yzx", "zxy", "xzy", "yxz", "zyx"}

// AddNode creates a node at path. The parent segment of the path must
// already exist unless the node is a root. Every node gets the six
// transform channels and a rotateOrder enum.
func (s *Scene) AddNode(path string, order mathutil.RotationOrder) (*Node, error) {
	if !strings.HasPrefix(path, "|") {
		return nil, fmt.Errorf("memscene: node path %q must start with '|'", path)
	}
	if _, ok := s.nodes[path]; ok {
		return nil, fmt.Errorf("memscene: node %q already exists", path)
	}
	parent := parentPath(path)
	if parent != "" {
		if _, ok := s.nodes[parent]; !ok {
			return nil, fmt.Errorf("memscene: parent %q of %q does not exist", parent, path)
		}
	}

	n := &Node{
		Path:   path,
		Parent: parent,
		attrs:  make(map[string]*Attr),
	}
	for _, name := range translateChannels {
		n.addAttr(&Attr{Name: name, Nice: name})
	}
	for _, name := range scene.RotationChannels {
		n.addAttr(&Attr{Name: name, Nice: name})
	}
	n.addAttr(&Attr{
		Name:    "rotateOrder",
		Nice:    "Rotate Order",
		Enum:    true,
		Options: rotateOrderOptions,
		Value:   float64(order),
	})

	s.nodes[path] = n
	s.nodeOrder = append(s.nodeOrder, path)
	return n, nil
}

// Node returns the node at path, or nil.
func (s *Scene) Node(path string) *Node {
	return s.nodes[path]
}

// Nodes returns all node paths in creation order.
func (s *Scene) Nodes() []string {
	out := make([]string, len(s.nodeOrder))
	copy(out, s.nodeOrder)
	return out
}

// RemoveNode deletes a node. Used by tests to simulate mid-operation
// node deletion; children are left dangling on purpose.
func (s *Scene) RemoveNode(path string) {
	delete(s.nodes, path)
	for i, p := range s.nodeOrder {
		if p == path {
			s.nodeOrder = append(s.nodeOrder[:i], s.nodeOrder[i+1:]...)
			break
		}
	}
}

func (n *Node) addAttr(a *Attr) {
	n.attrs[a.Name] = a
	n.order = append(n.order, a.Name)
}

// AddEnumAttr declares a user enum attribute with the given option labels.
func (n *Node) AddEnumAttr(name, nice string, options []string) *Attr {
	a := &Attr{Name: name, Nice: nice, Enum: true, Options: options, User: true}
	n.addAttr(a)
	return a
}

// AddFloatAttr declares a user float attribute.
func (n *Node) AddFloatAttr(name, nice string) *Attr {
	a := &Attr{Name: name, Nice: nice, User: true}
	n.addAttr(a)
	return a
}

// Attr returns the named attribute, or nil.
func (n *Node) Attr(name string) *Attr {
	return n.attrs[name]
}

// SetSpaces installs the space routing table on an enum attribute.
func (a *Attr) SetSpaces(spaces map[string]string) {
	a.Spaces = spaces
}

// SetKeyAt inserts or replaces a key, keeping the key list time-sorted.
func (a *Attr) SetKeyAt(t, v float64) {
	for i := range a.Keys {
		if a.Keys[i].Time == t {
			a.Keys[i].Value = v
			return
		}
	}
	a.Keys = append(a.Keys, Key{Time: t, Value: v})
	sort.Slice(a.Keys, func(i, j int) bool { return a.Keys[i].Time < a.Keys[j].Time })
}

// RemoveKeyAt deletes the key at exactly time t, if present.
func (a *Attr) RemoveKeyAt(t float64) {
	for i := range a.Keys {
		if a.Keys[i].Time == t {
			a.Keys = append(a.Keys[:i], a.Keys[i+1:]...)
			return
		}
	}
}

// Eval returns the attribute's value at time t. Enums hold the previous
// key's value (stepped); floats interpolate linearly.
func (a *Attr) Eval(t float64) float64 {
	if len(a.Keys) == 0 {
		return a.Value
	}
	if t <= a.Keys[0].Time {
		return a.Keys[0].Value
	}
	last := a.Keys[len(a.Keys)-1]
	if t >= last.Time {
		return last.Value
	}
	i := sort.Search(len(a.Keys), func(i int) bool { return a.Keys[i].Time > t })
	prev, next := a.Keys[i-1], a.Keys[i]
	if a.Enum {
		return prev.Value
	}
	f := (t - prev.Time) / (next.Time - prev.Time)
	return prev.Value + (next.Value-prev.Value)*f
}

// connected reports whether the attribute counts as wired into the graph:
// an explicit connection, a space routing table, or an animation curve.
func (a *Attr) connected() bool {
	return a.Wired || a.Spaces != nil || len(a.Keys) > 0
}

// spaceAttr returns the first enum attribute carrying a space table.
func (n *Node) spaceAttr() *Attr {
	for _, name := range n.order {
		a := n.attrs[name]
		if a.Enum && a.Spaces != nil {
			return a
		}
	}
	return nil
}

func parentPath(path string) string {
	i := strings.LastIndex(path, "|")
	if i <= 0 {
		return ""
	}
	return path[:i]
}

// Depth returns the hierarchy depth of a node path (segment count).
func Depth(path string) int {
	return strings.Count(path, "|")
}

var _ scene.Host = (*Scene)(nil)
