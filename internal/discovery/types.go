package discovery

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/Alehaaaa/camstool/internal/gimbal"
)

// SwitchableAttribute is one enum attribute on one node that qualifies as
// a space switch. Instances are rebuilt on every discovery pass and never
// cached across selection changes.
type SwitchableAttribute struct {
	Node          string
	AttributeName string

	// Options are the cleaned, de-duplicated labels in declaration order.
	// Always at least two entries.
	Options []string

	// OptionValues holds each label's enum value on the host, parallel to
	// Options: the explicit "=<int>" suffix when the raw label carried
	// one, otherwise the label's raw declaration position. Cleaning may
	// drop placeholder entries, so a label's cleaned position is not its
	// enum value.
	OptionValues []int

	// MarkedValues are the enum indices with at least one keyframe, or
	// the singleton current value when the attribute is unkeyed.
	MarkedValues map[int]struct{}

	// CurrentValue is the enum index at the current time.
	CurrentValue int

	// Gimbal maps option label to its score, present only on rotateOrder.
	Gimbal map[string]gimbal.Entry
}

// SwitchGroup bundles the same-named switch attribute across every
// selected node that exposes it, forming one logical control.
type SwitchGroup struct {
	AttributeName string
	DisplayLabel  string

	// Members maps node path to its attribute; memberOrder preserves
	// first-seen order for deterministic iteration.
	Members     map[string]*SwitchableAttribute
	memberOrder []string
}

func (g *SwitchGroup) add(sa *SwitchableAttribute) {
	if _, ok := g.Members[sa.Node]; !ok {
		g.memberOrder = append(g.memberOrder, sa.Node)
	}
	g.Members[sa.Node] = sa
}

// MemberNodes returns the member node paths in first-seen order.
func (g *SwitchGroup) MemberNodes() []string {
	out := make([]string, len(g.memberOrder))
	copy(out, g.memberOrder)
	return out
}

// Options returns the union of the members' option labels, first-seen
// order, duplicates removed. This is what a control for the group shows.
func (g *SwitchGroup) Options() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, node := range g.memberOrder {
		for _, opt := range g.Members[node].Options {
			if _, ok := seen[opt]; !ok {
				seen[opt] = struct{}{}
				out = append(out, opt)
			}
		}
	}
	return out
}

// OptionEntry is the dispatch record for one option label: the nodes
// whose own option list contains the label, and each node's own enum
// value for it (members may order or number their options differently).
type OptionEntry struct {
	TargetNodes []string
	LocalIndex  map[string]int
}

// OptionIndex builds the dispatch table the apply engine consumes. It
// must be rebuilt whenever Members changes.
func (g *SwitchGroup) OptionIndex() map[string]OptionEntry {
	out := make(map[string]OptionEntry)
	for _, node := range g.memberOrder {
		sa := g.Members[node]
		for i, opt := range sa.Options {
			e, ok := out[opt]
			if !ok {
				e = OptionEntry{LocalIndex: make(map[string]int)}
			}
			e.TargetNodes = append(e.TargetNodes, node)
			e.LocalIndex[node] = sa.enumValue(i)
			out[opt] = e
		}
	}
	return out
}

func (sa *SwitchableAttribute) enumValue(i int) int {
	if i < len(sa.OptionValues) {
		return sa.OptionValues[i]
	}
	return i
}

// CleanOptionValues normalizes raw enum labels and resolves each
// survivor's enum value. Any "=<int>" value suffix is split off and
// becomes the value; otherwise the value is the label's raw position.
// Whitespace is trimmed, labels without an alphanumeric rune dropped,
// and duplicates removed keeping the first-seen label and value.
func CleanOptionValues(raw []string) ([]string, []int) {
	seen := make(map[string]struct{})
	var labels []string
	var values []int
	for i, label := range raw {
		value := i
		if j := strings.IndexByte(label, '='); j >= 0 && isInt(label[j+1:]) {
			value, _ = strconv.Atoi(label[j+1:])
			label = label[:j]
		}
		label = strings.TrimSpace(label)
		if !hasAlnum(label) {
			continue
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
		values = append(values, value)
	}
	return labels, values
}

// CleanOptions returns only the cleaned labels. Idempotent.
func CleanOptions(raw []string) []string {
	labels, _ := CleanOptionValues(raw)
	return labels
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func isInt(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
