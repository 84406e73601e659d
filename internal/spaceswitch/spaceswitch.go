// Package spaceswitch is the facade the surrounding tooling talks to:
// discovery, gimbal analysis and switch application over one host.
package spaceswitch

import (
	"github.com/rs/zerolog"

	"github.com/Alehaaaa/camstool/internal/apply"
	"github.com/Alehaaaa/camstool/internal/config"
	"github.com/Alehaaaa/camstool/internal/discovery"
	"github.com/Alehaaaa/camstool/internal/gimbal"
	"github.com/Alehaaaa/camstool/internal/scene"
)

type Tool struct {
	settings config.Settings

	disc     *discovery.Discovery
	analyzer *gimbal.Analyzer
	engine   *apply.Engine
}

// New wires the three components over a host. listenDetach/listenAttach
// may be nil when the caller has no reactive callbacks to guard.
func New(h scene.Host, settings config.Settings, log zerolog.Logger, listenDetach, listenAttach func()) *Tool {
	return &Tool{
		settings: settings,
		disc: discovery.New(h, discovery.Config{
			ShowRotateOrder: settings.ShowRotateOrder,
		}, log),
		analyzer: gimbal.New(h),
		engine: apply.New(h, apply.Options{
			EulerFilter:       settings.EulerFilter,
			DetachListeners:   listenDetach,
			ReattachListeners: listenAttach,
		}, log),
	}
}

// Discover scans the nodes for switch groups.
func (t *Tool) Discover(nodes []string) ([]*discovery.SwitchGroup, error) {
	return t.disc.Discover(nodes)
}

// AnalyzeGimbal scores the node's rotation orders.
func (t *Tool) AnalyzeGimbal(node string) (map[string]gimbal.Entry, error) {
	return t.analyzer.Analyze(node)
}

// Apply commits the chosen option. allFrames overrides the configured
// default when non-nil; interval restricts the bake.
func (t *Tool) Apply(group *discovery.SwitchGroup, chosenLabel string, allFrames *bool, interval *apply.Interval) (apply.Result, error) {
	all := t.settings.AllFrames
	if allFrames != nil {
		all = *allFrames
	}
	return t.engine.Apply(group, chosenLabel, all, interval)
}
