package memscene

import (
	"fmt"

	"github.com/Alehaaaa/camstool/internal/mathutil"
	"github.com/Alehaaaa/camstool/internal/scene"
)

// localMatrix builds the node's local rigid transform at time t from its
// translate and rotate channels under the rotation order active at t.
func (s *Scene) localMatrix(n *Node, t float64) mathutil.Mat4 {
	pos := mathutil.Vec3{
		n.attrs[translateChannels[0]].Eval(t),
		n.attrs[translateChannels[1]].Eval(t),
		n.attrs[translateChannels[2]].Eval(t),
	}
	e := mathutil.Euler{
		X:     mathutil.Deg2Rad(n.attrs[scene.RotationChannels[0]].Eval(t)),
		Y:     mathutil.Deg2Rad(n.attrs[scene.RotationChannels[1]].Eval(t)),
		Z:     mathutil.Deg2Rad(n.attrs[scene.RotationChannels[2]].Eval(t)),
		Order: mathutil.RotationOrder(int(n.attrs["rotateOrder"].Eval(t))),
	}
	return mathutil.FromMat3Translation(e.ToMat3(), pos)
}

// baseMatrix resolves the transform the node's local matrix is chained
// onto at time t: the active space driver when a space table routes one,
// otherwise the hierarchy parent.
func (s *Scene) baseMatrix(n *Node, t float64) (mathutil.Mat4, error) {
	if sp := n.spaceAttr(); sp != nil {
		idx := int(sp.Eval(t))
		if idx >= 0 && idx < len(sp.Options) {
			driver, ok := sp.Spaces[sp.Options[idx]]
			if ok {
				if driver == "" {
					return mathutil.Mat4Identity(), nil // world space
				}
				dn := s.nodes[driver]
				if dn == nil {
					return mathutil.Mat4{}, fmt.Errorf("memscene: space driver %q of %q: %w", driver, n.Path, scene.ErrEvaluation)
				}
				return s.worldAt(dn, t)
			}
		}
	}
	if n.Parent == "" {
		return mathutil.Mat4Identity(), nil
	}
	pn := s.nodes[n.Parent]
	if pn == nil {
		return mathutil.Mat4{}, fmt.Errorf("memscene: parent %q of %q: %w", n.Parent, n.Path, scene.ErrEvaluation)
	}
	return s.worldAt(pn, t)
}

func (s *Scene) worldAt(n *Node, t float64) (mathutil.Mat4, error) {
	base, err := s.baseMatrix(n, t)
	if err != nil {
		return mathutil.Mat4{}, err
	}
	return mathutil.Mat4Mul(base, s.localMatrix(n, t)), nil
}

// WorldMatrixAt evaluates a node's world transform at an arbitrary time
// without moving the scene's time cursor.
func (s *Scene) WorldMatrixAt(path string, t float64) (mathutil.Mat4, error) {
	n := s.nodes[path]
	if n == nil {
		return mathutil.Mat4{}, fmt.Errorf("memscene: %q: %w", path, scene.ErrNodeMissing)
	}
	return s.worldAt(n, t)
}

// setWorld re-expresses the world transform as a local one under the
// node's active base and keys the six transform channels at time t.
func (s *Scene) setWorld(n *Node, t float64, m mathutil.Mat4) error {
	for _, name := range translateChannels {
		if n.attrs[name].Locked {
			return fmt.Errorf("memscene: %s.%s locked: %w", n.Path, name, scene.ErrAttributeNotSettable)
		}
	}
	for _, name := range scene.RotationChannels {
		if n.attrs[name].Locked {
			return fmt.Errorf("memscene: %s.%s locked: %w", n.Path, name, scene.ErrAttributeNotSettable)
		}
	}

	base, err := s.baseMatrix(n, t)
	if err != nil {
		return err
	}
	local := mathutil.Mat4Mul(base.RigidInverse(), m)

	order := mathutil.RotationOrder(int(n.attrs["rotateOrder"].Eval(t)))
	e := mathutil.EulerFromMat3(local.Rotation(), order)
	pos := local.Translation()

	for i, name := range translateChannels {
		a := n.attrs[name]
		a.SetKeyAt(t, pos[i])
		a.Value = pos[i]
	}
	deg := [3]float64{mathutil.Rad2Deg(e.X), mathutil.Rad2Deg(e.Y), mathutil.Rad2Deg(e.Z)}
	for i, name := range scene.RotationChannels {
		a := n.attrs[name]
		a.SetKeyAt(t, deg[i])
		a.Value = deg[i]
	}
	return nil
}
