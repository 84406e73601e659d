package apply

import (
	"sort"
	"strings"

	"github.com/Alehaaaa/camstool/internal/scene"
)

// Interval is an explicit closed timeline range supplied by the caller.
type Interval struct {
	Start, End float64
}

func (iv Interval) contains(t float64) bool {
	return t >= iv.Start && t <= iv.End
}

// bakePlan is the resolved set of times to rewrite. Either a single time
// (all targets) or a sparse ascending time → nodes mapping.
type bakePlan struct {
	single bool
	at     float64 // single-time case

	times []float64            // strictly ascending
	nodes map[float64][]string // nodes with a key at each time
}

// resolvePlan builds the bake plan per the rules in the engine doc:
// no interval and no all-frames collapses to the current time; otherwise
// the union of relevant key times, filtered to the interval if one was
// given. An empty sparse plan without an interval falls back to
// single-time.
func (e *Engine) resolvePlan(attr string, targets []string, allFrames bool, interval *Interval) bakePlan {
	current := e.host.CurrentTime()
	if interval == nil && !allFrames {
		return singlePlan(current, targets)
	}

	perNode := make(map[string][]float64, len(targets))
	union := make(map[float64]struct{})
	for _, node := range targets {
		times := e.relevantKeyTimes(node, attr)
		perNode[node] = times
		for _, t := range times {
			union[t] = struct{}{}
		}
	}

	var times []float64
	for t := range union {
		if interval != nil && !interval.contains(t) {
			continue
		}
		times = append(times, t)
	}
	sort.Float64s(times)

	if len(times) == 0 {
		if interval == nil {
			return singlePlan(current, targets)
		}
		return bakePlan{} // nothing keyed in range: no-op
	}

	nodes := make(map[float64][]string, len(times))
	for _, node := range targets {
		for _, t := range perNode[node] {
			if interval != nil && !interval.contains(t) {
				continue
			}
			nodes[t] = append(nodes[t], node)
		}
	}
	// Deepest nodes first within a time sample, so child captures are
	// not invalidated by parent writes at the same time.
	for t := range nodes {
		sortByDepthDesc(nodes[t])
	}

	return bakePlan{times: times, nodes: nodes}
}

// relevantKeyTimes returns the node's key times on the switch attribute.
// For rotateOrder the three rotation channels are folded in as well: a
// rotation-order change has to rewrite every rotation key, not only the
// (usually unkeyed) order attribute.
func (e *Engine) relevantKeyTimes(node, attr string) []float64 {
	seen := make(map[float64]struct{})
	var out []float64
	add := func(times []float64) {
		for _, t := range times {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				out = append(out, t)
			}
		}
	}
	if times, err := e.host.KeyTimes(node, attr); err == nil {
		add(times)
	}
	if attr == scene.RotateOrderAttr {
		for _, ch := range scene.RotationChannels {
			if times, err := e.host.KeyTimes(node, ch); err == nil {
				add(times)
			}
		}
	}
	return out
}

func singlePlan(t float64, targets []string) bakePlan {
	ordered := make([]string, len(targets))
	copy(ordered, targets)
	sortByDepthDesc(ordered)
	return bakePlan{single: true, at: t, times: []float64{t}, nodes: map[float64][]string{t: ordered}}
}

func (p bakePlan) empty() bool {
	return len(p.times) == 0
}

func sortByDepthDesc(nodes []string) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return strings.Count(nodes[i], "|") > strings.Count(nodes[j], "|")
	})
}
