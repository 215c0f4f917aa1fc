package osmnet

import "github.com/azybler/osmnetplan/pkg/settings"

// NodeRetentionPlanner accumulates the node ids referenced by activated
// ways during a ways-only pre-pass (§4.3a), producing the bitset the main
// pass installs via Builder.SetNodeRetentionBitset to reduce memory on
// large extracts.
type NodeRetentionPlanner struct {
	settings *settings.Settings
	retained map[int64]bool
}

// NewNodeRetentionPlanner creates an empty planner.
func NewNodeRetentionPlanner(s *settings.Settings) *NodeRetentionPlanner {
	return &NodeRetentionPlanner{settings: s, retained: map[int64]bool{}}
}

// ObserveWay records every node id of an activated way (§4.3a "for each
// activated way append all its node references into a bitset").
func (p *NodeRetentionPlanner) ObserveWay(wayID int64, nodeIDs []int64, tags map[string]string) {
	if p.settings.IsWayExcluded(wayID) {
		return
	}
	key, value, ok := WayKeyValue(tags)
	if !ok {
		return
	}
	if !p.settings.IsTypeActivated(key, value, defaultActivated(key, value)) {
		return
	}
	for _, id := range nodeIDs {
		p.retained[id] = true
	}
}

// Bitset returns the accumulated retained-node-id set.
func (p *NodeRetentionPlanner) Bitset() map[int64]bool {
	return p.retained
}
