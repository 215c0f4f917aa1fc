package osmnet

import "github.com/azybler/osmnetplan/pkg/netmodel"

// Repair runs §4.3b step 4 topology repair on every layer: for every
// planit node, find every live link that contains that node's position as
// an internal (non-endpoint) vertex, and break the link there. Breaking
// mutates the link arena, so each layer is repaired to a fixed point
// (repeated passes until no internal intersection remains) rather than a
// single linear scan, satisfying "the breaking is idempotent against
// repeated invocations" without requiring the caller to know how many
// internal intersections a single way can expose.
func (b *Builder) Repair() {
	for _, layer := range b.Network.Layers() {
		repairLayer(layer)
	}
}

func repairLayer(layer *netmodel.Layer) {
	for {
		brokeAny := false
		// Re-snapshot live links each round: BreakLinkAt appends new links
		// to the arena, which a single ranging pass would otherwise also
		// (harmlessly but wastefully) revisit.
		links := layer.LiveLinks()
		for _, link := range links {
			if link.Removed {
				continue
			}
			for i := 1; i < len(link.Geometry)-1; i++ {
				atNode := layer.FindNode(link.Geometry[i])
				if atNode == netmodel.NoID {
					continue
				}
				netmodel.BreakLinkAt(layer, link.ID, atNode)
				brokeAny = true
				break // this link id is now tombstoned; move to the next link
			}
		}
		if !brokeAny {
			return
		}
	}
}
