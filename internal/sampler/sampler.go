// Package sampler reads and writes world-space rigid transforms through
// the host, treating the host's global time cursor as a scoped resource.
package sampler

import (
	"fmt"

	"github.com/Alehaaaa/camstool/internal/mathutil"
	"github.com/Alehaaaa/camstool/internal/scene"
)

// Sampler captures and applies world matrices for single nodes. It never
// touches animation curves beyond what the host's rigid transform-set
// primitive keys on its own.
type Sampler struct {
	host scene.Host
}

func New(h scene.Host) *Sampler {
	return &Sampler{host: h}
}

// CaptureWorldMatrix moves evaluation to t (if not already there) and
// reads the node's resolved world transform.
func (s *Sampler) CaptureWorldMatrix(node string, t float64) (mathutil.Mat4, error) {
	if !s.host.NodeExists(node) {
		return mathutil.Mat4{}, fmt.Errorf("sampler: capture %s: %w", node, scene.ErrNodeMissing)
	}
	if s.host.CurrentTime() != t {
		s.host.SetCurrentTime(t)
	}
	m, err := s.host.WorldMatrix(node)
	if err != nil {
		return mathutil.Mat4{}, fmt.Errorf("sampler: capture %s at %v: %w", node, t, err)
	}
	return m, nil
}

// ApplyWorldMatrix sets the switch enum to enumValue and re-applies the
// pre-captured matrix as the node's world transform at the current time.
// The matrix write cancels the jump the enum change would otherwise
// cause. The switch attribute itself is not keyed here.
func (s *Sampler) ApplyWorldMatrix(node, attr string, enumValue int, m mathutil.Mat4) error {
	if !s.host.NodeExists(node) {
		return fmt.Errorf("sampler: apply %s: %w", node, scene.ErrNodeMissing)
	}
	if err := s.host.SetAttr(node, attr, float64(enumValue)); err != nil {
		return fmt.Errorf("sampler: apply %s.%s: %w", node, attr, err)
	}
	if err := s.host.SetWorldMatrix(node, m); err != nil {
		return fmt.Errorf("sampler: apply %s: %w", node, err)
	}
	return nil
}

// RotationAt reads the node's raw rotation-channel values (degrees) and
// its assigned rotation order at time t, restoring the time cursor
// before returning.
func (s *Sampler) RotationAt(node string, t float64) (mathutil.Euler, error) {
	guard := scene.SaveTime(s.host)
	defer guard.Release()

	if s.host.CurrentTime() != t {
		s.host.SetCurrentTime(t)
	}
	var deg [3]float64
	for i, ch := range scene.RotationChannels {
		v, err := s.host.GetAttr(node, ch)
		if err != nil {
			return mathutil.Euler{}, fmt.Errorf("sampler: rotation of %s at %v: %w", node, t, err)
		}
		deg[i] = v
	}
	ord, err := s.host.GetAttr(node, scene.RotateOrderAttr)
	if err != nil {
		return mathutil.Euler{}, fmt.Errorf("sampler: rotation order of %s: %w", node, err)
	}
	return mathutil.Euler{
		X:     mathutil.Deg2Rad(deg[0]),
		Y:     mathutil.Deg2Rad(deg[1]),
		Z:     mathutil.Deg2Rad(deg[2]),
		Order: mathutil.RotationOrder(int(ord)),
	}, nil
}
