package apply

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alehaaaa/camstool/internal/discovery"
	"github.com/Alehaaaa/camstool/internal/mathutil"
	"github.com/Alehaaaa/camstool/internal/memscene"
	"github.com/Alehaaaa/camstool/internal/scene"
)

// rigScene builds a world/local switch rig: a moving target and a camera
// whose "space" enum routes between world and the target.
func rigScene(t *testing.T) *memscene.Scene {
	t.Helper()
	sc := memscene.New()
	_, err := sc.AddNode("|root", mathutil.OrderXYZ)
	require.NoError(t, err)
	_, err = sc.AddNode("|root|target", mathutil.OrderXYZ)
	require.NoError(t, err)
	_, err = sc.AddNode("|root|cam", mathutil.OrderXYZ)
	require.NoError(t, err)

	target := sc.Node("|root|target")
	target.Attr("translateX").SetKeyAt(1, 0)
	target.Attr("translateX").SetKeyAt(10, 25)
	target.Attr("rotateZ").SetKeyAt(1, 0)
	target.Attr("rotateZ").SetKeyAt(10, 60)

	cam := sc.Node("|root|cam")
	cam.Attr("translateX").Value = 3
	cam.Attr("translateY").Value = -2
	cam.Attr("rotateY").Value = 35

	a := cam.AddEnumAttr("space", "Space", []string{"World", "Local"})
	a.SetSpaces(map[string]string{"World": "", "Local": "|root|target"})
	return sc
}

func discoverGroup(t *testing.T, sc *memscene.Scene, attr string, nodes ...string) *discovery.SwitchGroup {
	t.Helper()
	cfg := discovery.Config{ShowRotateOrder: attr == scene.RotateOrderAttr}
	groups, err := discovery.New(sc, cfg, zerolog.Nop()).Discover(nodes)
	require.NoError(t, err)
	for _, g := range groups {
		if g.AttributeName == attr {
			return g
		}
	}
	t.Fatalf("no group %q", attr)
	return nil
}

func newEngine(sc scene.Host, opts Options) *Engine {
	return New(sc, opts, zerolog.Nop())
}

func TestApplySingleTimePreservesWorld(t *testing.T) {
	sc := rigScene(t)
	sc.SetCurrentTime(5)
	before, err := sc.WorldMatrix("|root|cam")
	require.NoError(t, err)

	group := discoverGroup(t, sc, "space", "|root|cam")
	res, err := newEngine(sc, Options{}).Apply(group, "Local", false, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.AppliedCount)
	assert.Empty(t, res.Warnings)

	v, err := sc.GetAttr("|root|cam", "space")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	after, err := sc.WorldMatrix("|root|cam")
	require.NoError(t, err)
	assert.True(t, before.NearEqual(after, 1e-9), "world pose moved:\n%v\n%v", before, after)
}

func TestApplyTransientKeyRemoved(t *testing.T) {
	sc := rigScene(t)
	sc.SetCurrentTime(5)

	group := discoverGroup(t, sc, "space", "|root|cam")
	_, err := newEngine(sc, Options{}).Apply(group, "Local", false, nil)
	require.NoError(t, err)

	// The switch attribute was unkeyed going in and must come out unkeyed.
	times, err := sc.KeyTimes("|root|cam", "space")
	require.NoError(t, err)
	assert.Empty(t, times)
}

func TestApplyKeyedAllFrames(t *testing.T) {
	sc := rigScene(t)
	a := sc.Node("|root|cam").Attr("space")
	a.SetKeyAt(1, 0)
	a.SetKeyAt(10, 0)

	sc.SetCurrentTime(1)
	before1, err := sc.WorldMatrixAt("|root|cam", 1)
	require.NoError(t, err)
	before10, err := sc.WorldMatrixAt("|root|cam", 10)
	require.NoError(t, err)

	group := discoverGroup(t, sc, "space", "|root|cam")
	res, err := newEngine(sc, Options{}).Apply(group, "Local", true, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.AppliedCount)

	after1, err := sc.WorldMatrixAt("|root|cam", 1)
	require.NoError(t, err)
	after10, err := sc.WorldMatrixAt("|root|cam", 10)
	require.NoError(t, err)
	assert.True(t, before1.NearEqual(after1, 1e-9), "pose at 1 moved")
	assert.True(t, before10.NearEqual(after10, 1e-9), "pose at 10 moved")

	// Both switch keys now carry the chosen option.
	vals, err := sc.KeyedValues("|root|cam", "space")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, vals)
}

func TestApplyIntervalWithoutKeysIsNoop(t *testing.T) {
	sc := rigScene(t)
	sc.Node("|root|cam").Attr("space").SetKeyAt(5, 0)
	before, err := sc.WorldMatrixAt("|root|cam", 5)
	require.NoError(t, err)

	group := discoverGroup(t, sc, "space", "|root|cam")
	res, err := newEngine(sc, Options{}).Apply(group, "Local", true, &Interval{Start: 100, End: 110})
	require.NoError(t, err)
	assert.Equal(t, 0, res.AppliedCount)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "no keyframes")

	after, err := sc.WorldMatrixAt("|root|cam", 5)
	require.NoError(t, err)
	assert.True(t, before.NearEqual(after, 1e-12))
	v, err := sc.GetAttr("|root|cam", "space")
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}

func TestApplyRestoresScopedState(t *testing.T) {
	sc := rigScene(t)
	sc.SetCurrentTime(7)
	sc.SetSelection([]string{"|root|cam", "|root|target"})

	var detached, reattached int
	group := discoverGroup(t, sc, "space", "|root|cam")
	_, err := newEngine(sc, Options{
		DetachListeners:   func() { detached++ },
		ReattachListeners: func() { reattached++ },
	}).Apply(group, "Local", false, nil)
	require.NoError(t, err)

	assert.Equal(t, 7.0, sc.CurrentTime())
	assert.Equal(t, []string{"|root|cam", "|root|target"}, sc.Selection())
	assert.False(t, sc.RefreshSuspended())
	assert.Equal(t, 0, sc.UndoDepth())
	assert.Equal(t, 1, detached)
	assert.Equal(t, 1, reattached)
}

func TestApplyUnknownOption(t *testing.T) {
	sc := rigScene(t)
	group := discoverGroup(t, sc, "space", "|root|cam")
	_, err := newEngine(sc, Options{}).Apply(group, "Orbit", false, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Orbit"`)
}

// orderedHost records the sequence of world reads and writes.
type orderedHost struct {
	*memscene.Scene
	events []string
}

func (h *orderedHost) WorldMatrix(node string) (mathutil.Mat4, error) {
	h.events = append(h.events, "capture")
	return h.Scene.WorldMatrix(node)
}

func (h *orderedHost) SetWorldMatrix(node string, m mathutil.Mat4) error {
	h.events = append(h.events, "apply")
	return h.Scene.SetWorldMatrix(node, m)
}

func TestApplyCapturesBeforeApplies(t *testing.T) {
	sc := rigScene(t)
	a := sc.Node("|root|cam").Attr("space")
	a.SetKeyAt(1, 0)
	a.SetKeyAt(10, 0)

	a.SetKeyAt(5, 0)

	host := &orderedHost{Scene: sc}
	group := discoverGroup(t, sc, "space", "|root|cam")
	_, err := newEngine(host, Options{}).Apply(group, "Local", true, nil)
	require.NoError(t, err)

	require.Len(t, host.events, 6)
	assert.Equal(t, []string{"capture", "capture", "capture", "apply", "apply", "apply"}, host.events)
}

func TestApplySkipsRecoverableFailures(t *testing.T) {
	sc := rigScene(t)
	_, err := sc.AddNode("|root|aim", mathutil.OrderXYZ)
	require.NoError(t, err)
	aim := sc.Node("|root|aim")
	sa := aim.AddEnumAttr("space", "Space", []string{"World", "Local"})
	sa.SetSpaces(map[string]string{"World": "", "Local": "|root|target"})
	aim.Attr("translateX").Locked = true // write will fail, recoverably

	group := discoverGroup(t, sc, "space", "|root|cam", "|root|aim")
	res, err := newEngine(sc, Options{}).Apply(group, "Local", false, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.AppliedCount)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "|root|aim")

	// The healthy sibling still switched.
	v, err := sc.GetAttr("|root|cam", "space")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}

func TestApplyWritesHostEnumValue(t *testing.T) {
	// A placeholder label before the chosen one shifts its cleaned
	// position; the write must still use the node's own enum numbering.
	sc := memscene.New()
	_, err := sc.AddNode("|root", mathutil.OrderXYZ)
	require.NoError(t, err)
	_, err = sc.AddNode("|root|target", mathutil.OrderXYZ)
	require.NoError(t, err)
	_, err = sc.AddNode("|root|cam", mathutil.OrderXYZ)
	require.NoError(t, err)
	sc.Node("|root|target").Attr("translateX").Value = 15

	a := sc.Node("|root|cam").AddEnumAttr("space", "Space", []string{"----", "World", "Local"})
	a.SetSpaces(map[string]string{"World": "", "Local": "|root|target"})
	a.Value = 1 // World

	before, err := sc.WorldMatrix("|root|cam")
	require.NoError(t, err)

	group := discoverGroup(t, sc, "space", "|root|cam")
	res, err := newEngine(sc, Options{}).Apply(group, "Local", false, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.AppliedCount)

	v, err := sc.GetAttr("|root|cam", "space")
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	after, err := sc.WorldMatrix("|root|cam")
	require.NoError(t, err)
	assert.True(t, before.NearEqual(after, 1e-9), "world pose moved")
}

func TestApplyEvaluationFailureAbortsAndRestores(t *testing.T) {
	sc := rigScene(t)
	// Route the target space at a node that no longer exists: the write
	// cannot resolve a base transform and must abort the bake.
	sc.Node("|root|cam").Attr("space").SetSpaces(
		map[string]string{"World": "", "Local": "|root|vanished"})

	sc.SetCurrentTime(4)
	sc.SetSelection([]string{"|root|cam"})

	group := discoverGroup(t, sc, "space", "|root|cam")
	res, err := newEngine(sc, Options{}).Apply(group, "Local", false, nil)
	require.ErrorIs(t, err, scene.ErrEvaluation)
	assert.Equal(t, 0, res.AppliedCount)

	// Scoped state comes back on the failure path too.
	assert.Equal(t, 4.0, sc.CurrentTime())
	assert.Equal(t, []string{"|root|cam"}, sc.Selection())
	assert.False(t, sc.RefreshSuspended())
	assert.Equal(t, 0, sc.UndoDepth())

	// The transient key on the switch attribute is cleaned up as well.
	times, err := sc.KeyTimes("|root|cam", "space")
	require.NoError(t, err)
	assert.Empty(t, times)
}

func TestApplyRotateOrderBakesAllFrames(t *testing.T) {
	sc := rigScene(t)
	cam := sc.Node("|root|cam")
	cam.Attr("rotateY").SetKeyAt(1, 10)
	cam.Attr("rotateY").SetKeyAt(5, 80)
	cam.Attr("rotateX").SetKeyAt(5, 30)

	before1, err := sc.WorldMatrixAt("|root|cam", 1)
	require.NoError(t, err)
	before5, err := sc.WorldMatrixAt("|root|cam", 5)
	require.NoError(t, err)

	group := discoverGroup(t, sc, scene.RotateOrderAttr, "|root|cam")
	// allFrames false is overridden for rotation-order switches; the
	// label's tier suffix is tolerated.
	res, err := newEngine(sc, Options{}).Apply(group, "zyx (Best)", false, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.AppliedCount)

	v, err := sc.GetAttr("|root|cam", scene.RotateOrderAttr)
	require.NoError(t, err)
	assert.Equal(t, float64(mathutil.OrderZYX), v)

	after1, err := sc.WorldMatrixAt("|root|cam", 1)
	require.NoError(t, err)
	after5, err := sc.WorldMatrixAt("|root|cam", 5)
	require.NoError(t, err)
	assert.True(t, before1.NearEqual(after1, 1e-9), "pose at 1 moved")
	assert.True(t, before5.NearEqual(after5, 1e-9), "pose at 5 moved")
}

func TestApplyEulerFilterUnwraps(t *testing.T) {
	sc := rigScene(t)
	cam := sc.Node("|root|cam")
	cam.Attr("rotateY").SetKeyAt(1, 170)
	cam.Attr("rotateY").SetKeyAt(2, -170)
	a := cam.Attr("space")
	a.SetKeyAt(1, 0)
	a.SetKeyAt(2, 0)

	group := discoverGroup(t, sc, "space", "|root|cam")
	_, err := newEngine(sc, Options{EulerFilter: true}).Apply(group, "Local", true, nil)
	require.NoError(t, err)

	vals, err := sc.KeyedValues("|root|cam", "rotateY")
	require.NoError(t, err)
	require.Len(t, vals, 2)
	assert.InDelta(t, vals[0], vals[1], 180, "euler filter left a wrap jump")
}

func TestSinglePlanDepthOrdering(t *testing.T) {
	plan := singlePlan(1, []string{"|root", "|root|cam|lens", "|root|cam"})
	assert.True(t, plan.single)
	assert.Equal(t, []string{"|root|cam|lens", "|root|cam", "|root"}, plan.nodes[1])
}

func TestResolvePlanSparse(t *testing.T) {
	sc := rigScene(t)
	_, err := sc.AddNode("|root|aim", mathutil.OrderXYZ)
	require.NoError(t, err)
	a := sc.Node("|root|aim").AddEnumAttr("space", "Space", []string{"World", "Local"})
	a.SetSpaces(map[string]string{"World": "", "Local": "|root|target"})

	sc.Node("|root|cam").Attr("space").SetKeyAt(3, 0)
	sc.Node("|root|cam").Attr("space").SetKeyAt(8, 0)
	a.SetKeyAt(8, 0)

	e := newEngine(sc, Options{})
	plan := e.resolvePlan("space", []string{"|root|cam", "|root|aim"}, true, nil)
	require.False(t, plan.single)
	assert.Equal(t, []float64{3, 8}, plan.times)
	assert.Equal(t, []string{"|root|cam"}, plan.nodes[3])
	assert.ElementsMatch(t, []string{"|root|cam", "|root|aim"}, plan.nodes[8])

	// The interval trims to the overlap only.
	trimmed := e.resolvePlan("space", []string{"|root|cam", "|root|aim"}, true, &Interval{Start: 5, End: 9})
	assert.Equal(t, []float64{8}, trimmed.times)
}
