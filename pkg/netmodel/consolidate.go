package netmodel

// ConsolidateTypes deduplicates functionally-equal LinkSegmentTypes within
// the layer and reassigns every segment to the surviving representative
// (§4.3b.6, gated by settings.ConsolidateLinkSegmentTypes). GetOrCreateType
// already prevents most duplication at construction time; this pass catches
// types that became equal only after topology repair or PT stitching
// mutated access properties, and compacts the type arena's ids.
//
// Returns the number of types removed.
func (l *Layer) ConsolidateTypes() int {
	n := len(l.types)
	if n == 0 {
		return 0
	}

	// canonical[i] is the index (into l.types) of the first type that i is
	// functionally identical to.
	canonical := make([]int, n)
	for i := range canonical {
		canonical[i] = i
	}
	for i := 1; i < n; i++ {
		for j := 0; j < i; j++ {
			if canonical[j] != j {
				continue
			}
			if l.types[i].CapacityPcuPerLaneHour == l.types[j].CapacityPcuPerLaneHour &&
				l.types[i].MaxDensityPcuPerKmLane == l.types[j].MaxDensityPcuPerKmLane &&
				l.types[i].Access.Equal(l.types[j].Access) {
				canonical[i] = j
				break
			}
		}
	}

	removed := 0
	for i, c := range canonical {
		if c != i {
			removed++
		}
	}
	if removed == 0 {
		return 0
	}

	// Each representative's external id and name become the comma-joined
	// external ids of every type in its class, in arena order.
	for i, c := range canonical {
		if c != i {
			rep := &l.types[c]
			rep.ExternalID += "," + l.types[i].ExternalID
			rep.Name = rep.ExternalID
		}
	}

	// Build the compacted arena, remapping old index -> new id.
	oldIdxToNewID := make([]LinkSegmentTypeID, n)
	newTypes := make([]LinkSegmentType, 0, n-removed)
	for i, c := range canonical {
		if c != i {
			continue
		}
		newTypes = append(newTypes, l.types[i])
		oldIdxToNewID[i] = LinkSegmentTypeID(len(newTypes))
	}
	for i, c := range canonical {
		oldIdxToNewID[i] = oldIdxToNewID[c]
	}
	for i := range newTypes {
		newTypes[i].ID = LinkSegmentTypeID(i + 1)
	}

	for i := range l.segs {
		old := l.segs[i].Type
		if old == NoID {
			continue
		}
		l.segs[i].Type = oldIdxToNewID[old-1]
	}

	l.types = newTypes
	l.nextTypeID = LinkSegmentTypeID(len(newTypes))
	l.typeIndex = map[string][]LinkSegmentTypeID{}
	for _, t := range l.types {
		l.typeIndex[t.ExternalID] = append(l.typeIndex[t.ExternalID], t.ID)
	}
	return removed
}
