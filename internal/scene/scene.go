package scene

import "github.com/Alehaaaa/camstool/internal/mathutil"

// RotationChannels are the host's rotation channel attribute names, in
// axis order.
var RotationChannels = [3]string{"rotateX", "rotateY", "rotateZ"}

// RotateOrderAttr is the host's rotation-order switch attribute.
const RotateOrderAttr = "rotateOrder"

// Host is the animation host's scene graph. Nodes are addressed by their
// full path ("|root|child"); attributes by short name. All value reads and
// writes happen at the host's current evaluation time unless a key time is
// given explicitly. The host owns node lifetime; callers must tolerate
// ErrNodeMissing from any node-addressed call.
type Host interface {
	// Nodes and attributes.
	NodeExists(node string) bool
	AttributeExists(node, attr string) bool
	// UserAttributes lists the node's animatable user-authored attributes
	// in declaration order, excluding host built-ins and locked channels.
	UserAttributes(node string) ([]string, error)
	NiceName(node, attr string) string
	IsEnum(node, attr string) bool
	// EnumOptions returns the raw option labels in declaration order.
	EnumOptions(node, attr string) ([]string, error)
	// IsConnected reports whether the attribute participates in at least
	// one incoming or outgoing connection.
	IsConnected(node, attr string) bool
	IsSettable(node, attr string) bool

	// Values at the current evaluation time.
	GetAttr(node, attr string) (float64, error)
	SetAttr(node, attr string, value float64) error

	// Keyframes.
	KeyTimes(node, attr string) ([]float64, error)
	KeyedValues(node, attr string) ([]float64, error)
	SetKey(node, attr string, time, value float64) error
	RemoveKey(node, attr string, time float64) error

	// World transform at the current evaluation time. SetWorldMatrix keys
	// exactly the channels a rigid assignment always touches (translate
	// and rotate); it never keys anything else.
	WorldMatrix(node string) (mathutil.Mat4, error)
	SetWorldMatrix(node string, m mathutil.Mat4) error

	// Global time cursor and timeline.
	CurrentTime() float64
	SetCurrentTime(t float64)
	PlaybackRange() (min, max float64)
	// TimelineSelection reports an active timeline range selection, if any.
	TimelineSelection() (start, end float64, ok bool)

	// Selection set.
	Selection() []string
	SetSelection(nodes []string)

	// Animation curves. RotationCurves returns the names of the curves
	// driving the node's three rotation channels, in channel order,
	// omitting unkeyed channels. FilterCurve applies the host's euler
	// unwrap filter to the named curves.
	RotationCurves(node string) []string
	FilterCurve(curves ...string) error

	// Host UI state touched during a bake.
	SuspendRefresh(suspend bool)
	OpenUndoChunk(name string)
	CloseUndoChunk()
}

// TimeGuard is a scoped hold on the host's global time cursor. Every
// operation that moves time acquires one and releases it on all exit paths.
type TimeGuard struct {
	host     Host
	saved    float64
	released bool
}

// SaveTime records the current time for later restoration.
func SaveTime(h Host) *TimeGuard {
	return &TimeGuard{host: h, saved: h.CurrentTime()}
}

// Release restores the saved time. Safe to call more than once.
func (g *TimeGuard) Release() {
	if g.released {
		return
	}
	g.released = true
	g.host.SetCurrentTime(g.saved)
}
