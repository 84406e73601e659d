package scene

import "errors"

var (
	// ErrNodeMissing means the target node no longer exists. Per-node
	// recoverable: callers skip the node and continue with its siblings.
	ErrNodeMissing = errors.New("scene: node missing")

	// ErrAttributeNotSettable means the attribute is locked or driven by a
	// connection. Per-node recoverable, same as ErrNodeMissing.
	ErrAttributeNotSettable = errors.New("scene: attribute not settable")

	// ErrEvaluation means the host could not resolve a transform at the
	// requested time. Aborts the remaining bake; restoration still runs.
	ErrEvaluation = errors.New("scene: evaluation failed")
)

// Recoverable reports whether err is a per-node failure that should skip
// the node rather than abort the whole operation.
func Recoverable(err error) bool {
	return errors.Is(err, ErrNodeMissing) || errors.Is(err, ErrAttributeNotSettable)
}
