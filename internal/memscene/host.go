package memscene

import (
	"fmt"
	"strings"

	"github.com/Alehaaaa/camstool/internal/mathutil"
	"github.com/Alehaaaa/camstool/internal/scene"
)

// scene.Host implementation.

func (s *Scene) NodeExists(node string) bool {
	return s.nodes[node] != nil
}

func (s *Scene) AttributeExists(node, attr string) bool {
	n := s.nodes[node]
	return n != nil && n.attrs[attr] != nil
}

func (s *Scene) UserAttributes(node string) ([]string, error) {
	n := s.nodes[node]
	if n == nil {
		return nil, fmt.Errorf("memscene: %q: %w", node, scene.ErrNodeMissing)
	}
	var out []string
	for _, name := range n.order {
		a := n.attrs[name]
		if a.User && !a.Locked {
			out = append(out, name)
		}
	}
	return out, nil
}

func (s *Scene) NiceName(node, attr string) string {
	if a := s.attr(node, attr); a != nil && a.Nice != "" {
		return a.Nice
	}
	return attr
}

func (s *Scene) IsEnum(node, attr string) bool {
	a := s.attr(node, attr)
	return a != nil && a.Enum
}

func (s *Scene) EnumOptions(node, attr string) ([]string, error) {
	a := s.attr(node, attr)
	if a == nil {
		return nil, s.missing(node, attr)
	}
	out := make([]string, len(a.Options))
	copy(out, a.Options)
	return out, nil
}

func (s *Scene) IsConnected(node, attr string) bool {
	a := s.attr(node, attr)
	return a != nil && a.connected()
}

func (s *Scene) IsSettable(node, attr string) bool {
	a := s.attr(node, attr)
	return a != nil && !a.Locked && !a.Wired
}

func (s *Scene) GetAttr(node, attr string) (float64, error) {
	a := s.attr(node, attr)
	if a == nil {
		return 0, s.missing(node, attr)
	}
	return a.Eval(s.current), nil
}

// SetAttr writes the static value. When the attribute is keyed and a key
// sits exactly at the current time, that key is updated as well; a keyed
// attribute without a key here keeps evaluating from its curve.
func (s *Scene) SetAttr(node, attr string, value float64) error {
	a := s.attr(node, attr)
	if a == nil {
		return s.missing(node, attr)
	}
	if a.Locked || a.Wired {
		return fmt.Errorf("memscene: %s.%s: %w", node, attr, scene.ErrAttributeNotSettable)
	}
	a.Value = value
	for i := range a.Keys {
		if a.Keys[i].Time == s.current {
			a.Keys[i].Value = value
			break
		}
	}
	return nil
}

func (s *Scene) KeyTimes(node, attr string) ([]float64, error) {
	a := s.attr(node, attr)
	if a == nil {
		return nil, s.missing(node, attr)
	}
	out := make([]float64, len(a.Keys))
	for i, k := range a.Keys {
		out[i] = k.Time
	}
	return out, nil
}

func (s *Scene) KeyedValues(node, attr string) ([]float64, error) {
	a := s.attr(node, attr)
	if a == nil {
		return nil, s.missing(node, attr)
	}
	out := make([]float64, len(a.Keys))
	for i, k := range a.Keys {
		out[i] = k.Value
	}
	return out, nil
}

func (s *Scene) SetKey(node, attr string, time, value float64) error {
	a := s.attr(node, attr)
	if a == nil {
		return s.missing(node, attr)
	}
	if a.Locked {
		return fmt.Errorf("memscene: %s.%s: %w", node, attr, scene.ErrAttributeNotSettable)
	}
	a.SetKeyAt(time, value)
	return nil
}

func (s *Scene) RemoveKey(node, attr string, time float64) error {
	a := s.attr(node, attr)
	if a == nil {
		return s.missing(node, attr)
	}
	a.RemoveKeyAt(time)
	return nil
}

func (s *Scene) WorldMatrix(node string) (mathutil.Mat4, error) {
	return s.WorldMatrixAt(node, s.current)
}

func (s *Scene) SetWorldMatrix(node string, m mathutil.Mat4) error {
	n := s.nodes[node]
	if n == nil {
		return fmt.Errorf("memscene: %q: %w", node, scene.ErrNodeMissing)
	}
	return s.setWorld(n, s.current, m)
}

func (s *Scene) CurrentTime() float64     { return s.current }
func (s *Scene) SetCurrentTime(t float64) { s.current = t }

func (s *Scene) PlaybackRange() (float64, float64) {
	return s.playMin, s.playMax
}

// SetPlaybackRange adjusts the timeline bounds.
func (s *Scene) SetPlaybackRange(min, max float64) {
	s.playMin, s.playMax = min, max
}

func (s *Scene) TimelineSelection() (float64, float64, bool) {
	return s.selStart, s.selEnd, s.selRange
}

// SelectTimeRange sets an active timeline range selection.
func (s *Scene) SelectTimeRange(start, end float64) {
	s.selStart, s.selEnd, s.selRange = start, end, true
}

// ClearTimeRange drops the timeline range selection.
func (s *Scene) ClearTimeRange() {
	s.selRange = false
}

func (s *Scene) Selection() []string {
	out := make([]string, len(s.selection))
	copy(out, s.selection)
	return out
}

func (s *Scene) SetSelection(nodes []string) {
	s.selection = make([]string, len(nodes))
	copy(s.selection, nodes)
}

// RotationCurves names the keyed rotation channels as "<node>.<channel>".
func (s *Scene) RotationCurves(node string) []string {
	n := s.nodes[node]
	if n == nil {
		return nil
	}
	var out []string
	for _, name := range scene.RotationChannels {
		if len(n.attrs[name].Keys) > 0 {
			out = append(out, node+"."+name)
		}
	}
	return out
}

// FilterCurve unwraps each named curve in place: every key is shifted by
// whole turns to land within 180° of its predecessor.
func (s *Scene) FilterCurve(curves ...string) error {
	for _, c := range curves {
		i := strings.LastIndex(c, ".")
		if i < 0 {
			return fmt.Errorf("memscene: malformed curve name %q", c)
		}
		a := s.attr(c[:i], c[i+1:])
		if a == nil {
			return fmt.Errorf("memscene: curve %q: %w", c, scene.ErrNodeMissing)
		}
		for k := 1; k < len(a.Keys); k++ {
			a.Keys[k].Value = mathutil.Unwrap(a.Keys[k].Value, a.Keys[k-1].Value)
		}
	}
	return nil
}

func (s *Scene) SuspendRefresh(suspend bool) {
	if suspend {
		s.suspendDepth++
	} else if s.suspendDepth > 0 {
		s.suspendDepth--
	}
}

// RefreshSuspended reports whether a refresh suspension is active.
func (s *Scene) RefreshSuspended() bool { return s.suspendDepth > 0 }

func (s *Scene) OpenUndoChunk(string) { s.undoDepth++ }
func (s *Scene) CloseUndoChunk() {
	if s.undoDepth > 0 {
		s.undoDepth--
	}
}

// UndoDepth reports open undo chunks; zero after a balanced operation.
func (s *Scene) UndoDepth() int { return s.undoDepth }

func (s *Scene) attr(node, attr string) *Attr {
	n := s.nodes[node]
	if n == nil {
		return nil
	}
	return n.attrs[attr]
}

func (s *Scene) missing(node, attr string) error {
	if s.nodes[node] == nil {
		return fmt.Errorf("memscene: %q: %w", node, scene.ErrNodeMissing)
	}
	return fmt.Errorf("memscene: %s.%s: %w", node, attr, scene.ErrNodeMissing)
}
