package netmodel

import "github.com/paulmach/orb"

// Renumber compacts the layer's arenas to contiguous 1-based ids, dropping
// every tombstoned node and link and rebuilding all relational indices
// (§4.3d "contiguous id renumbering"). It is the final step of network
// materialisation, run once topology repair, dangling pruning and type
// consolidation have all settled (§4.3b step 7).
//
// Renumber must run after PT stitching has recorded any node/link ids it
// still needs, since old ids are invalidated by this call. Callers that
// renumber mid-pipeline are responsible for translating ids they hold
// externally via the returned NodeRemap/LinkRemap.
type RenumberResult struct {
	NodeRemap map[NodeID]NodeID
	LinkRemap map[LinkID]LinkID
}

func (l *Layer) Renumber() RenumberResult {
	nodeRemap := map[NodeID]NodeID{}
	newNodes := make([]Node, 0, len(l.nodes))
	for _, n := range l.nodes {
		if n.Removed {
			continue
		}
		newID := NodeID(len(newNodes) + 1)
		nodeRemap[n.ID] = newID
		n.ID = newID
		newNodes = append(newNodes, n)
	}

	linkRemap := map[LinkID]LinkID{}
	newLinks := make([]Link, 0, len(l.links))
	for _, lk := range l.links {
		if lk.Removed {
			continue
		}
		newID := LinkID(len(newLinks) + 1)
		linkRemap[lk.ID] = newID
		lk.ID = newID
		lk.NodeA = nodeRemap[lk.NodeA]
		lk.NodeB = nodeRemap[lk.NodeB]
		newLinks = append(newLinks, lk)
	}

	// Segments follow their owning (now-renumbered) link; a segment whose
	// link was dropped is dropped too.
	segRemap := map[LinkSegmentID]LinkSegmentID{}
	newSegs := make([]LinkSegment, 0, len(l.segs))
	for _, s := range l.segs {
		newLinkID, ok := linkRemap[s.Link]
		if !ok {
			continue
		}
		newID := LinkSegmentID(len(newSegs) + 1)
		segRemap[s.ID] = newID
		s.ID = newID
		s.Link = newLinkID
		newSegs = append(newSegs, s)
	}

	for i := range newLinks {
		if newLinks[i].SegmentAB != NoID {
			newLinks[i].SegmentAB = segRemap[newLinks[i].SegmentAB]
		}
		if newLinks[i].SegmentBA != NoID {
			newLinks[i].SegmentBA = segRemap[newLinks[i].SegmentBA]
		}
	}
	for i := range newNodes {
		adj := newNodes[i].AdjacentSegments[:0]
		for _, s := range newNodes[i].AdjacentSegments {
			if remapped, ok := segRemap[s]; ok {
				adj = append(adj, remapped)
			}
		}
		newNodes[i].AdjacentSegments = adj
	}

	l.nodes = newNodes
	l.links = newLinks
	l.segs = newSegs
	l.nextNodeID = NodeID(len(newNodes))
	l.nextLinkID = LinkID(len(newLinks))
	l.nextSegID = LinkSegmentID(len(newSegs))

	l.positionIndex = make(map[orb.Point]NodeID, len(newNodes))
	for _, n := range newNodes {
		l.positionIndex[n.Position] = n.ID
	}

	l.wayLinks = map[int64][]LinkID{}
	for _, lk := range newLinks {
		if lk.OsmWayID != 0 {
			l.wayLinks[lk.OsmWayID] = append(l.wayLinks[lk.OsmWayID], lk.ID)
		}
	}

	return RenumberResult{NodeRemap: nodeRemap, LinkRemap: linkRemap}
}
