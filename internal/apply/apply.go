// Package apply commits a chosen space-switch option, preserving every
// affected node's world-space pose at every affected time.
package apply

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Alehaaaa/camstool/internal/discovery"
	"github.com/Alehaaaa/camstool/internal/mathutil"
	"github.com/Alehaaaa/camstool/internal/sampler"
	"github.com/Alehaaaa/camstool/internal/scene"
)

// Result reports the outcome of one apply operation. Per-node failures
// land in Warnings; they never abort sibling nodes.
type Result struct {
	AppliedCount int
	Warnings     []string
}

// Options configures an Engine.
type Options struct {
	// EulerFilter runs the host's unwrap filter over affected rotation
	// curves after the bake. Best-effort.
	EulerFilter bool

	// DetachListeners and ReattachListeners bracket the bake, keeping the
	// caller's host-event callbacks from re-entering discovery while
	// attributes are being rewritten. Either may be nil.
	DetachListeners   func()
	ReattachListeners func()
}

type Engine struct {
	host    scene.Host
	sampler *sampler.Sampler
	opts    Options
	log     zerolog.Logger
}

func New(h scene.Host, opts Options, log zerolog.Logger) *Engine {
	return &Engine{host: h, sampler: sampler.New(h), opts: opts, log: log}
}

// Apply switches the group's members to the chosen option. allFrames
// bakes every relevant keyed time; interval restricts the bake to an
// explicit timeline range. Rotation-order switches always bake all
// frames: a partial order change desynchronizes interpolation for the
// rest of the curve.
//
// Within the bake, time runs strictly ascending and every capture
// completes before the first apply. A later time's world matrix may
// depend on the switch attribute's value at an earlier time, so
// interleaving capture with apply would corrupt later reads.
func (e *Engine) Apply(group *discovery.SwitchGroup, chosenLabel string, allFrames bool, interval *Interval) (Result, error) {
	attr := group.AttributeName
	if attr == scene.RotateOrderAttr {
		// Control labels may carry a tier suffix ("yzx (Best)").
		if i := strings.IndexByte(chosenLabel, ' '); i >= 0 {
			chosenLabel = chosenLabel[:i]
		}
		allFrames = true
	}

	entry, ok := group.OptionIndex()[chosenLabel]
	if !ok {
		return Result{}, fmt.Errorf("apply: group %q has no option %q", attr, chosenLabel)
	}

	plan := e.resolvePlan(attr, entry.TargetNodes, allFrames, interval)
	if plan.empty() {
		return Result{Warnings: []string{"no keyframes inside the selected range"}}, nil
	}

	e.log.Debug().
		Str("attr", attr).
		Str("option", chosenLabel).
		Int("times", len(plan.times)).
		Bool("single", plan.single).
		Msg("starting bake")

	restore := e.begin()
	defer restore()

	res, err := e.bake(attr, entry, plan)
	if e.opts.EulerFilter {
		e.eulerFilter(entry.TargetNodes)
	}
	return res, err
}

// begin suspends host refresh, detaches the caller's listeners, opens an
// undo chunk and snapshots time and selection. The returned func undoes
// all of it and is safe on every exit path.
func (e *Engine) begin() func() {
	e.host.OpenUndoChunk("spaceSwitch")
	if e.opts.DetachListeners != nil {
		e.opts.DetachListeners()
	}
	e.host.SuspendRefresh(true)
	guard := scene.SaveTime(e.host)
	selection := e.host.Selection()

	return func() {
		guard.Release()
		e.host.SetSelection(selection)
		e.host.SuspendRefresh(false)
		if e.opts.ReattachListeners != nil {
			e.opts.ReattachListeners()
		}
		e.host.CloseUndoChunk()
	}
}

// bake runs the two-pass capture/apply over the plan. Pass A captures
// every world matrix first; pass B replays them with the enum switched.
func (e *Engine) bake(attr string, entry discovery.OptionEntry, plan bakePlan) (Result, error) {
	var res Result
	captured := make(map[float64]map[string]mathutil.Mat4, len(plan.times))
	failed := make(map[string]struct{})

	// Pass A: capture, ascending.
	for _, t := range plan.times {
		at := make(map[string]mathutil.Mat4)
		for _, node := range plan.nodes[t] {
			if _, skip := failed[node]; skip {
				continue
			}
			m, err := e.sampler.CaptureWorldMatrix(node, t)
			if err != nil {
				if scene.Recoverable(err) {
					failed[node] = struct{}{}
					res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %v", node, err))
					continue
				}
				return res, err
			}
			at[node] = m
		}
		captured[t] = at
	}

	applied := make(map[string]struct{})

	// Pass B: apply, ascending.
	for _, t := range plan.times {
		if e.host.CurrentTime() != t {
			e.host.SetCurrentTime(t)
		}
		for _, node := range plan.nodes[t] {
			m, ok := captured[t][node]
			if !ok {
				continue
			}
			if _, skip := failed[node]; skip {
				continue
			}
			idx := entry.LocalIndex[node]
			err := e.applyOne(node, attr, idx, m, plan.single)
			if err != nil {
				if scene.Recoverable(err) {
					failed[node] = struct{}{}
					res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %v", node, err))
					continue
				}
				res.AppliedCount = len(applied)
				return res, err
			}
			applied[node] = struct{}{}
		}
	}

	res.AppliedCount = len(applied)
	return res, nil
}

// applyOne performs the world-preserving write for one node at the
// current time. In the single-time case an unkeyed switch attribute is
// keyed transiently so the host registers the change, and the key is
// removed again no matter how the write goes.
func (e *Engine) applyOne(node, attr string, enumIndex int, m mathutil.Mat4, single bool) error {
	if single {
		times, err := e.host.KeyTimes(node, attr)
		if err == nil && len(times) == 0 {
			return e.applyWithTransientKey(node, attr, enumIndex, m)
		}
	}
	return e.sampler.ApplyWorldMatrix(node, attr, enumIndex, m)
}

func (e *Engine) applyWithTransientKey(node, attr string, enumIndex int, m mathutil.Mat4) (err error) {
	t := e.host.CurrentTime()
	current, err := e.host.GetAttr(node, attr)
	if err != nil {
		return err
	}
	if err := e.host.SetKey(node, attr, t, current); err != nil {
		return err
	}
	defer func() {
		if rmErr := e.host.RemoveKey(node, attr, t); rmErr != nil && err == nil {
			err = rmErr
		}
	}()
	return e.sampler.ApplyWorldMatrix(node, attr, enumIndex, m)
}

// eulerFilter unwraps the rotation curves of every target. Failures are
// logged, never fatal: the switch itself has already landed.
func (e *Engine) eulerFilter(targets []string) {
	seen := make(map[string]struct{})
	var curves []string
	for _, node := range targets {
		for _, c := range e.host.RotationCurves(node) {
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				curves = append(curves, c)
			}
		}
	}
	if len(curves) == 0 {
		return
	}
	if err := e.host.FilterCurve(curves...); err != nil {
		e.log.Warn().Err(err).Msg("euler filter failed")
	}
}
