// Package discovery scans selected nodes for enum attributes that behave
// as space switches and bundles same-named attributes into groups.
package discovery

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/Alehaaaa/camstool/internal/gimbal"
	"github.com/Alehaaaa/camstool/internal/scene"
)

// Config controls what discovery offers.
type Config struct {
	// ShowRotateOrder adds the rotation-order attribute to the scan.
	ShowRotateOrder bool
}

type Discovery struct {
	host     scene.Host
	analyzer *gimbal.Analyzer
	cfg      Config
	log      zerolog.Logger
}

func New(h scene.Host, cfg Config, log zerolog.Logger) *Discovery {
	return &Discovery{host: h, analyzer: gimbal.New(h), cfg: cfg, log: log}
}

// Discover produces one SwitchGroup per qualifying attribute name across
// the given nodes. Results are always built from scratch; nothing is
// diffed against a previous pass. Nodes that vanished since selection
// are skipped.
func (d *Discovery) Discover(nodes []string) ([]*SwitchGroup, error) {
	groups := make(map[string]*SwitchGroup)
	var groupOrder []string

	seenNode := make(map[string]struct{})
	for _, node := range nodes {
		if _, ok := seenNode[node]; ok {
			continue
		}
		seenNode[node] = struct{}{}

		attrs, err := d.host.UserAttributes(node)
		if err != nil {
			if errors.Is(err, scene.ErrNodeMissing) {
				d.log.Debug().Str("node", node).Msg("skipping vanished node")
				continue
			}
			return nil, err
		}
		if d.cfg.ShowRotateOrder {
			attrs = append(attrs, scene.RotateOrderAttr)
		}

		for _, attr := range attrs {
			sa, err := d.qualify(node, attr)
			if err != nil {
				return nil, err
			}
			if sa == nil {
				continue // rejected, not an error
			}
			g, ok := groups[attr]
			if !ok {
				g = &SwitchGroup{
					AttributeName: attr,
					DisplayLabel:  d.host.NiceName(node, attr),
					Members:       make(map[string]*SwitchableAttribute),
				}
				groups[attr] = g
				groupOrder = append(groupOrder, attr)
			}
			g.add(sa)
		}
	}

	out := make([]*SwitchGroup, 0, len(groupOrder))
	for _, name := range groupOrder {
		out = append(out, groups[name])
	}
	return out, nil
}

// qualify applies the rejection rules to one attribute. A nil result
// means the attribute is not a switch.
func (d *Discovery) qualify(node, attr string) (*SwitchableAttribute, error) {
	if !d.host.IsEnum(node, attr) {
		return nil, nil
	}
	raw, err := d.host.EnumOptions(node, attr)
	if err != nil {
		if scene.Recoverable(err) {
			return nil, nil
		}
		return nil, err
	}
	options, values := CleanOptionValues(raw)
	if len(options) < 2 {
		return nil, nil
	}
	// An unconnected enum cannot functionally switch anything.
	// rotateOrder switches interpolation rather than routing, so it is
	// exempt from the connection check.
	if attr != scene.RotateOrderAttr && !d.host.IsConnected(node, attr) {
		return nil, nil
	}

	current, err := d.host.GetAttr(node, attr)
	if err != nil {
		if scene.Recoverable(err) {
			return nil, nil
		}
		return nil, err
	}

	marked := make(map[int]struct{})
	keyed, err := d.host.KeyedValues(node, attr)
	if err == nil && len(keyed) > 0 {
		for _, v := range keyed {
			marked[int(v)] = struct{}{}
		}
	} else {
		marked[int(current)] = struct{}{}
	}

	sa := &SwitchableAttribute{
		Node:          node,
		AttributeName: attr,
		Options:       options,
		OptionValues:  values,
		MarkedValues:  marked,
		CurrentValue:  int(current),
	}

	if attr == scene.RotateOrderAttr {
		g, err := d.analyzer.Analyze(node)
		if err != nil {
			d.log.Warn().Err(err).Str("node", node).Msg("gimbal analysis failed")
		} else if len(g) > 0 {
			sa.Gimbal = g
		}
	}
	return sa, nil
}
