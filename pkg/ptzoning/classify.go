// Package ptzoning implements the §4.4 three-pass public-transport
// stitching engine, run after pkg/osmnet's network materialisation has
// produced an otherwise-immutable network (pass 3 is the sole exception:
// it may split links via netmodel.BreakLinkAt to create stop-position
// nodes).
package ptzoning

import "github.com/azybler/osmnetplan/pkg/osmtags"

// RelationMember is the minimal shape of an OSM relation member the
// stitching engine needs: role and the member's own id/tags (resolved by
// the caller from the underlying entity store).
type RelationMember struct {
	Role   string
	OsmID  int64
	IsWay  bool
	IsNode bool
	Tags   map[string]string
}

// Pass1 records, across every public-transport stop-area relation, the
// way ids that must be promoted to platforms even though the way itself
// carries no PT tag (§4.4 pass 1): a member with role="platform", or
// role="outer" on a multipolygon whose tags mark it a platform.
type Pass1 struct {
	MustRetainAsPlatform map[int64]bool
}

// NewPass1 creates an empty pass-1 accumulator.
func NewPass1() *Pass1 {
	return &Pass1{MustRetainAsPlatform: map[int64]bool{}}
}

// ObserveRelation processes one relation's tags and members (§4.4 pass 1
// "only relations are read").
func (p *Pass1) ObserveRelation(relationTags map[string]string, members []RelationMember) {
	if !osmtags.IsPTv2StopAreaRelation(relationTags) {
		return
	}
	for _, m := range members {
		if !m.IsWay {
			continue
		}
		switch m.Role {
		case "platform":
			p.MustRetainAsPlatform[m.OsmID] = true
		case "outer":
			if _, ok := osmtags.IsPTv2WaitingArea(m.Tags); ok {
				p.MustRetainAsPlatform[m.OsmID] = true
			}
		}
	}
}
