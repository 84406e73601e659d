package memscene

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Alehaaaa/camstool/internal/mathutil"
)

// Scene document schema. Nodes may appear in any order; the loader
// creates parents before children.

type sceneDoc struct {
	Playback  playbackDoc `yaml:"playback"`
	Current   float64     `yaml:"current"`
	Selection []string    `yaml:"selection,omitempty"`
	Nodes     []nodeDoc   `yaml:"nodes"`
}

type playbackDoc struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

type nodeDoc struct {
	Path        string              `yaml:"path"`
	RotateOrder string              `yaml:"rotateOrder,omitempty"`
	Channels    map[string]attrDoc  `yaml:"channels,omitempty"`
	Attrs       []userAttrDoc       `yaml:"attrs,omitempty"`
}

type attrDoc struct {
	Value float64  `yaml:"value"`
	Keys  []keyDoc `yaml:"keys,omitempty"`
}

type userAttrDoc struct {
	Name    string            `yaml:"name"`
	Nice    string            `yaml:"nice,omitempty"`
	Enum    bool              `yaml:"enum,omitempty"`
	Options []string          `yaml:"options,omitempty"`
	Value   float64           `yaml:"value"`
	Keys    []keyDoc          `yaml:"keys,omitempty"`
	Spaces  map[string]string `yaml:"spaces,omitempty"`
	Wired   bool              `yaml:"wired,omitempty"`
	Locked  bool              `yaml:"locked,omitempty"`
}

type keyDoc struct {
	Time  float64 `yaml:"time"`
	Value float64 `yaml:"value"`
}

// LoadFile reads a YAML scene document.
func LoadFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("memscene: read %s: %w", path, err)
	}
	return Load(data)
}

// Load builds a scene from YAML.
func Load(data []byte) (*Scene, error) {
	var doc sceneDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("memscene: parse scene: %w", err)
	}

	s := New()
	if doc.Playback.End > doc.Playback.Start {
		s.SetPlaybackRange(doc.Playback.Start, doc.Playback.End)
	}
	if doc.Current != 0 {
		s.current = doc.Current
	}

	nodes := make([]nodeDoc, len(doc.Nodes))
	copy(nodes, doc.Nodes)
	sort.SliceStable(nodes, func(i, j int) bool {
		return Depth(nodes[i].Path) < Depth(nodes[j].Path)
	})

	for _, nd := range nodes {
		order := mathutil.OrderXYZ
		if nd.RotateOrder != "" {
			order = mathutil.ParseOrder(nd.RotateOrder)
		}
		n, err := s.AddNode(nd.Path, order)
		if err != nil {
			return nil, err
		}
		for name, ch := range nd.Channels {
			a := n.attrs[name]
			if a == nil {
				return nil, fmt.Errorf("memscene: %s: unknown channel %q", nd.Path, name)
			}
			a.Value = ch.Value
			for _, k := range ch.Keys {
				a.SetKeyAt(k.Time, k.Value)
			}
		}
		for _, ad := range nd.Attrs {
			var a *Attr
			if ad.Enum || len(ad.Options) > 0 {
				a = n.AddEnumAttr(ad.Name, ad.Nice, ad.Options)
			} else {
				a = n.AddFloatAttr(ad.Name, ad.Nice)
			}
			a.Value = ad.Value
			a.Wired = ad.Wired
			a.Locked = ad.Locked
			if ad.Spaces != nil {
				a.SetSpaces(ad.Spaces)
			}
			for _, k := range ad.Keys {
				a.SetKeyAt(k.Time, k.Value)
			}
		}
	}

	s.SetSelection(doc.Selection)
	return s, nil
}

// SaveFile writes the scene back out as a YAML document.
func (s *Scene) SaveFile(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("memscene: write %s: %w", path, err)
	}
	return nil
}

// Marshal serializes the scene to YAML.
func (s *Scene) Marshal() ([]byte, error) {
	doc := sceneDoc{
		Playback:  playbackDoc{Start: s.playMin, End: s.playMax},
		Current:   s.current,
		Selection: s.selection,
	}
	for _, path := range s.nodeOrder {
		n := s.nodes[path]
		nd := nodeDoc{
			Path:        path,
			RotateOrder: mathutil.RotationOrder(int(n.attrs["rotateOrder"].Value)).String(),
		}
		for _, name := range n.order {
			a := n.attrs[name]
			switch {
			case a.User:
				nd.Attrs = append(nd.Attrs, userAttrDoc{
					Name:    a.Name,
					Nice:    a.Nice,
					Enum:    a.Enum,
					Options: a.Options,
					Value:   a.Value,
					Keys:    keysOut(a.Keys),
					Spaces:  a.Spaces,
					Wired:   a.Wired,
					Locked:  a.Locked,
				})
			case a.Name == "rotateOrder":
				// covered by the rotateOrder field; keys are rare enough
				// that a keyed order is emitted as a channel instead
				if len(a.Keys) > 0 {
					if nd.Channels == nil {
						nd.Channels = make(map[string]attrDoc)
					}
					nd.Channels[a.Name] = attrDoc{Value: a.Value, Keys: keysOut(a.Keys)}
				}
			default:
				if a.Value != 0 || len(a.Keys) > 0 {
					if nd.Channels == nil {
						nd.Channels = make(map[string]attrDoc)
					}
					nd.Channels[a.Name] = attrDoc{Value: a.Value, Keys: keysOut(a.Keys)}
				}
			}
		}
		doc.Nodes = append(doc.Nodes, nd)
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("memscene: marshal scene: %w", err)
	}
	return data, nil
}

func keysOut(keys []Key) []keyDoc {
	out := make([]keyDoc, len(keys))
	for i, k := range keys {
		out[i] = keyDoc{Time: k.Time, Value: k.Value}
	}
	return out
}
