package discovery

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alehaaaa/camstool/internal/mathutil"
	"github.com/Alehaaaa/camstool/internal/memscene"
)

func TestCleanOptions(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want []string
	}{
		{"value suffixes stripped", []string{"World=0", "Local=1"}, []string{"World", "Local"}},
		{"whitespace trimmed", []string{"  World ", "Local"}, []string{"World", "Local"}},
		{"non-alnum dropped", []string{"----", "World", "  ", "Local"}, []string{"World", "Local"}},
		{"duplicates keep first", []string{"World", "World=3", "Local"}, []string{"World", "Local"}},
		{"equals without int value kept", []string{"a=b", "c"}, []string{"a=b", "c"}},
		{"nothing left", []string{"--", "=="}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanOptions(tt.raw)
			assert.Equal(t, tt.want, got)
			// Cleaning is idempotent.
			assert.Equal(t, got, CleanOptions(got))
		})
	}
}

func TestCleanOptionValues(t *testing.T) {
	tests := []struct {
		name       string
		raw        []string
		wantLabels []string
		wantValues []int
	}{
		{"positions survive dropped placeholder", []string{"----", "World", "Local"},
			[]string{"World", "Local"}, []int{1, 2}},
		{"explicit suffix is the value", []string{"Off=0", "On=5"},
			[]string{"Off", "On"}, []int{0, 5}},
		{"duplicate keeps first value", []string{"World", "World=3", "Local"},
			[]string{"World", "Local"}, []int{0, 2}},
		{"mixed", []string{"  ", "A", "B=7"},
			[]string{"A", "B"}, []int{1, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels, values := CleanOptionValues(tt.raw)
			assert.Equal(t, tt.wantLabels, labels)
			assert.Equal(t, tt.wantValues, values)
		})
	}
}

func newTestScene(t *testing.T) *memscene.Scene {
	t.Helper()
	sc := memscene.New()
	_, err := sc.AddNode("|root", mathutil.OrderXYZ)
	require.NoError(t, err)
	_, err = sc.AddNode("|root|target", mathutil.OrderXYZ)
	require.NoError(t, err)
	_, err = sc.AddNode("|root|cam", mathutil.OrderXYZ)
	require.NoError(t, err)
	return sc
}

func addSpaceAttr(sc *memscene.Scene, node string, options []string) {
	a := sc.Node(node).AddEnumAttr("space", "Space", options)
	a.SetSpaces(map[string]string{"World": "", "Local": "|root|target"})
}

func TestDiscoverQualification(t *testing.T) {
	sc := newTestScene(t)
	cam := sc.Node("|root|cam")
	addSpaceAttr(sc, "|root|cam", []string{"World=0", "Local=1"})
	cam.AddEnumAttr("single", "Single", []string{"Only"})
	cam.AddEnumAttr("floating", "Floating", []string{"A", "B"}) // no connection
	cam.AddFloatAttr("weight", "Weight")

	d := New(sc, Config{}, zerolog.Nop())
	groups, err := d.Discover([]string{"|root|cam"})
	require.NoError(t, err)
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, "space", g.AttributeName)
	assert.Equal(t, "Space", g.DisplayLabel)
	assert.Equal(t, []string{"World", "Local"}, g.Options())

	sa := g.Members["|root|cam"]
	require.NotNil(t, sa)
	assert.Equal(t, 0, sa.CurrentValue)
	assert.Equal(t, map[int]struct{}{0: {}}, sa.MarkedValues)
	assert.Nil(t, sa.Gimbal)
}

func TestDiscoverMarkedValuesFromKeys(t *testing.T) {
	sc := newTestScene(t)
	addSpaceAttr(sc, "|root|cam", []string{"World", "Local"})
	a := sc.Node("|root|cam").Attr("space")
	a.SetKeyAt(1, 0)
	a.SetKeyAt(10, 1)

	groups, err := New(sc, Config{}, zerolog.Nop()).Discover([]string{"|root|cam"})
	require.NoError(t, err)
	require.Len(t, groups, 1)

	sa := groups[0].Members["|root|cam"]
	assert.Equal(t, map[int]struct{}{0: {}, 1: {}}, sa.MarkedValues)
}

func TestDiscoverGroupsAcrossNodes(t *testing.T) {
	sc := newTestScene(t)
	addSpaceAttr(sc, "|root|cam", []string{"World", "Local"})
	_, err := sc.AddNode("|root|aim", mathutil.OrderXYZ)
	require.NoError(t, err)
	// Same attribute name, option orders swapped.
	a := sc.Node("|root|aim").AddEnumAttr("space", "Space", []string{"Local", "World"})
	a.SetSpaces(map[string]string{"World": "", "Local": "|root|target"})

	// Duplicate and vanished selections are tolerated.
	groups, err := New(sc, Config{}, zerolog.Nop()).
		Discover([]string{"|root|cam", "|root|aim", "|root|cam", "|root|gone"})
	require.NoError(t, err)
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, []string{"|root|cam", "|root|aim"}, g.MemberNodes())
	assert.Equal(t, []string{"World", "Local"}, g.Options())

	idx := g.OptionIndex()
	local := idx["Local"]
	assert.ElementsMatch(t, []string{"|root|cam", "|root|aim"}, local.TargetNodes)
	assert.Equal(t, 1, local.LocalIndex["|root|cam"])
	assert.Equal(t, 0, local.LocalIndex["|root|aim"])
}

func TestDiscoverPlaceholderKeepsEnumValues(t *testing.T) {
	sc := newTestScene(t)
	a := sc.Node("|root|cam").AddEnumAttr("space", "Space", []string{"----", "World", "Local"})
	a.SetSpaces(map[string]string{"World": "", "Local": "|root|target"})
	a.Value = 1 // World, by the host's own numbering

	groups, err := New(sc, Config{}, zerolog.Nop()).Discover([]string{"|root|cam"})
	require.NoError(t, err)
	require.Len(t, groups, 1)

	sa := groups[0].Members["|root|cam"]
	assert.Equal(t, []string{"World", "Local"}, sa.Options)
	assert.Equal(t, []int{1, 2}, sa.OptionValues)
	assert.Equal(t, 1, sa.CurrentValue)
	assert.Equal(t, map[int]struct{}{1: {}}, sa.MarkedValues)

	// The dispatch table speaks the host's enum values, not cleaned
	// positions.
	idx := groups[0].OptionIndex()
	assert.Equal(t, 2, idx["Local"].LocalIndex["|root|cam"])
	assert.Equal(t, 1, idx["World"].LocalIndex["|root|cam"])
}

func TestDiscoverRotateOrder(t *testing.T) {
	sc := newTestScene(t)
	sc.Node("|root|cam").Attr("rotateY").SetKeyAt(1, 45)

	groups, err := New(sc, Config{ShowRotateOrder: true}, zerolog.Nop()).
		Discover([]string{"|root|cam"})
	require.NoError(t, err)
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, "rotateOrder", g.AttributeName)
	sa := g.Members["|root|cam"]
	require.NotNil(t, sa)
	assert.Len(t, sa.Options, 6)
	// rotateOrder has no connections but is still offered, with scores.
	require.NotNil(t, sa.Gimbal)
	assert.Len(t, sa.Gimbal, 6)
}

func TestDiscoverRebuildsFresh(t *testing.T) {
	sc := newTestScene(t)
	addSpaceAttr(sc, "|root|cam", []string{"World", "Local"})

	d := New(sc, Config{}, zerolog.Nop())
	first, err := d.Discover([]string{"|root|cam"})
	require.NoError(t, err)
	require.Len(t, first, 1)

	sc.RemoveNode("|root|cam")
	second, err := d.Discover([]string{"|root|cam"})
	require.NoError(t, err)
	assert.Empty(t, second)
}
