// Package gimbal scores candidate rotation orders by their distance from
// the gimbal-lock singularity across a node's keyed rotation history.
package gimbal

import (
	"fmt"
	"math"
	"sort"

	"github.com/Alehaaaa/camstool/internal/mathutil"
	"github.com/Alehaaaa/camstool/internal/sampler"
	"github.com/Alehaaaa/camstool/internal/scene"
)

// Entry is the verdict for one rotation order. Score is 0–100 where 100
// is maximally far from the singularity; Tier is "Best", "Good", "OK" or
// empty.
type Entry struct {
	Score int
	Tier  string
}

// Tier thresholds on the gap to the best score.
const (
	goodWithin = 2
	okWithin   = 6
)

type Analyzer struct {
	host    scene.Host
	sampler *sampler.Sampler
}

func New(h scene.Host) *Analyzer {
	return &Analyzer{host: h, sampler: sampler.New(h)}
}

// Analyze scores every rotation order the node offers. A node without a
// rotateOrder attribute yields an empty result, not an error. Each
// order's score is its worst case over the sampled times: one
// near-singular frame disqualifies the order.
func (a *Analyzer) Analyze(node string) (map[string]Entry, error) {
	if !a.host.AttributeExists(node, scene.RotateOrderAttr) {
		return map[string]Entry{}, nil
	}
	labels, err := a.host.EnumOptions(node, scene.RotateOrderAttr)
	if err != nil {
		return nil, fmt.Errorf("gimbal: orders of %s: %w", node, err)
	}
	if len(labels) == 0 {
		return map[string]Entry{}, nil
	}

	_, history, err := a.history(node, labels)
	if err != nil {
		return nil, err
	}

	scores := make([]int, len(labels))
	for i := range scores {
		scores[i] = 100
		for _, s := range history[i] {
			if s < scores[i] {
				scores[i] = s
			}
		}
	}

	tiers := classify(scores)
	out := make(map[string]Entry, len(labels))
	for i, label := range labels {
		out[label] = Entry{Score: scores[i], Tier: tiers[i]}
	}
	return out, nil
}

// History returns the sampled times and the per-time score trace of
// every rotation order, keyed by order label. Diagnostic surface for the
// chart tooling; Analyze is the worst-case reduction of the same data.
func (a *Analyzer) History(node string) ([]float64, map[string][]int, error) {
	if !a.host.AttributeExists(node, scene.RotateOrderAttr) {
		return nil, map[string][]int{}, nil
	}
	labels, err := a.host.EnumOptions(node, scene.RotateOrderAttr)
	if err != nil {
		return nil, nil, fmt.Errorf("gimbal: orders of %s: %w", node, err)
	}
	times, traces, err := a.history(node, labels)
	if err != nil {
		return nil, nil, err
	}
	out := make(map[string][]int, len(labels))
	for i, label := range labels {
		out[label] = traces[i]
	}
	return times, out, nil
}

func (a *Analyzer) history(node string, labels []string) ([]float64, [][]int, error) {
	times := a.sampleTimes(node)
	traces := make([][]int, len(labels))
	for i := range traces {
		traces[i] = make([]int, 0, len(times))
	}
	for _, t := range times {
		rot, err := a.sampler.RotationAt(node, t)
		if err != nil {
			return nil, nil, fmt.Errorf("gimbal: %s: %w", node, err)
		}
		for i, label := range labels {
			traces[i] = append(traces[i], scoreAt(rot, mathutil.ParseOrder(label)))
		}
	}
	return times, traces, nil
}

// sampleTimes collects the distinct key times across the three rotation
// channels, ascending. With no rotation keys the current time stands in.
func (a *Analyzer) sampleTimes(node string) []float64 {
	seen := make(map[float64]struct{})
	var times []float64
	for _, ch := range scene.RotationChannels {
		keyed, err := a.host.KeyTimes(node, ch)
		if err != nil {
			continue
		}
		for _, t := range keyed {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				times = append(times, t)
			}
		}
	}
	if len(times) == 0 {
		return []float64{a.host.CurrentTime()}
	}
	sort.Float64s(times)
	return times
}

// scoreAt re-expresses the rotation under the candidate order and maps
// the order's middle-axis angle to a 0–100 distance from ±90°.
func scoreAt(rot mathutil.Euler, order mathutil.RotationOrder) int {
	mid := mathutil.Rad2Deg(rot.Reorder(order).MiddleAngle())
	m := math.Mod(mid+90, 180)
	if m < 0 {
		m += 180
	}
	closeness := int(math.Round(math.Abs(m-90) / 90 * 100))
	return 100 - closeness
}

// classify labels each score by its gap to the maximum. Identical scores
// across the board mean the ranking carries no information, so every
// label stays empty.
func classify(scores []int) []string {
	tiers := make([]string, len(scores))
	if len(scores) == 0 {
		return tiers
	}
	best := scores[0]
	uniform := true
	for _, s := range scores[1:] {
		if s != scores[0] {
			uniform = false
		}
		if s > best {
			best = s
		}
	}
	if uniform {
		return tiers
	}
	for i, s := range scores {
		switch diff := best - s; {
		case diff == 0:
			tiers[i] = "Best"
		case diff <= goodWithin:
			tiers[i] = "Good"
		case diff <= okWithin:
			tiers[i] = "OK"
		}
	}
	return tiers
}
