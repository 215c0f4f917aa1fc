package netmodel

import "github.com/azybler/osmnetplan/pkg/osmtags"

// Network owns every InfrastructureLayer produced by a single pipeline
// invocation (§3 ownership; §5 "the network and zoning are the only
// mutable process-wide state and are owned exclusively by the current
// pipeline invocation").
type Network struct {
	layers map[osmtags.Layer]*Layer
}

// NewNetwork creates an empty, layer-less network.
func NewNetwork() *Network {
	return &Network{layers: map[osmtags.Layer]*Layer{}}
}

// LayerFor returns the layer for the given kind, creating it on first use.
func (n *Network) LayerFor(kind osmtags.Layer) *Layer {
	l, ok := n.layers[kind]
	if !ok {
		l = NewLayer(kind)
		n.layers[kind] = l
	}
	return l
}

// Layers returns every layer that has been touched, in a stable order
// (road, rail, water) so persisted output is deterministic (§5).
func (n *Network) Layers() []*Layer {
	var out []*Layer
	for _, kind := range []osmtags.Layer{osmtags.RoadLayer, osmtags.RailLayer, osmtags.WaterLayer} {
		if l, ok := n.layers[kind]; ok {
			out = append(out, l)
		}
	}
	return out
}

// HasLayer reports whether a layer of the given kind has been created.
func (n *Network) HasLayer(kind osmtags.Layer) bool {
	_, ok := n.layers[kind]
	return ok
}
