package osmnet

import "github.com/azybler/osmnetplan/pkg/netmodel"

// Prune removes dangling subnetworks on every layer (§4.3b step 5), gated
// by settings.RemoveDanglingSubnetworks.
func (b *Builder) Prune() {
	if !b.Settings.RemoveDanglingSubnetworks {
		return
	}
	for _, layer := range b.Network.Layers() {
		layer.PruneDangling(b.Settings.DanglingMinSize, b.Settings.DanglingKeepLargestOnly)
	}
}

// Consolidate deduplicates LinkSegmentTypes on every layer (§4.3b step 6),
// gated by settings.ConsolidateLinkSegmentTypes.
func (b *Builder) Consolidate() {
	if !b.Settings.ConsolidateLinkSegmentTypes {
		return
	}
	for _, layer := range b.Network.Layers() {
		layer.ConsolidateTypes()
	}
}

// Renumber compacts every layer's arenas to contiguous ids, dropping
// tombstones (§4.3d), and returns the per-layer remap so downstream PT
// stitching can translate any ids it cached before this call.
func (b *Builder) Renumber() map[string]netmodel.RenumberResult {
	out := map[string]netmodel.RenumberResult{}
	for _, layer := range b.Network.Layers() {
		out[layer.Kind.String()] = layer.Renumber()
	}
	return out
}
