package osmnet

import (
	"github.com/azybler/osmnetplan/pkg/osmtags"
	"github.com/paulmach/orb"
)

// FinishCircularWays splits every deferred circular way into one or more
// arcs (§4.3b step 3): split at internal nodes that are already an
// endpoint of a materialised link if any exist, else at a deterministic
// internal index so no self-loop link is ever created.
func (b *Builder) FinishCircularWays() {
	for _, cw := range b.circular {
		b.splitCircularWay(cw)
	}
	b.circular = nil
}

func (b *Builder) splitCircularWay(cw circularWay) {
	key, value, ok := WayKeyValue(cw.tags)
	if !ok {
		return
	}

	// A node is a "shared" split point if its position is a node in some
	// layer's node index. Layer nodes exist only at link endpoints, so a
	// position that is only an internal vertex of another way's link is
	// not detected as shared and does not split the ring.
	var splitIdx []int
	for i := 1; i < len(cw.nodes)-1; i++ {
		pos, ok := b.nodePos[cw.nodes[i]]
		if !ok {
			continue
		}
		for _, layerKind := range []osmtags.Layer{osmtags.RoadLayer, osmtags.RailLayer, osmtags.WaterLayer} {
			if !b.Network.HasLayer(layerKind) {
				continue
			}
			if b.Network.LayerFor(layerKind).FindNode(pos) != 0 {
				splitIdx = append(splitIdx, i)
				break
			}
		}
	}

	if len(splitIdx) == 0 {
		// Deterministic half-way split to guarantee no self-loop (§4.3b
		// step 3.b).
		mid := len(cw.nodes) / 2
		if mid == 0 {
			mid = 1
		}
		splitIdx = []int{mid}
	}

	// Build arcs between consecutive split indices, wrapping around the
	// ring: arc boundaries are 0, splitIdx..., len-1 (the ring's closing
	// node), producing one arc per pair of consecutive boundaries.
	boundaries := append([]int{0}, splitIdx...)
	boundaries = append(boundaries, len(cw.nodes)-1)

	for i := 0; i+1 < len(boundaries); i++ {
		start, end := boundaries[i], boundaries[i+1]
		if start >= end {
			continue
		}
		arcNodes := cw.nodes[start : end+1]
		if len(arcNodes) < 2 {
			continue
		}

		positions := make([]orb.Point, 0, len(arcNodes))
		retainedArcNodes := make([]int64, 0, len(arcNodes))
		for _, nid := range arcNodes {
			p, ok := b.nodePos[nid]
			if !ok {
				continue
			}
			positions = append(positions, p)
			retainedArcNodes = append(retainedArcNodes, nid)
		}
		if len(positions) < 2 {
			continue
		}

		if err := b.materialiseWay(cw.osmID, retainedArcNodes, positions, cw.tags, key, value); err != nil {
			b.warnf("circular way %d arc %d-%d: %v", cw.osmID, start, end, err)
		}
	}
}
