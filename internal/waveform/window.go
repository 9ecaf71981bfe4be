package waveform

// Window returns the half-open index range [from, to) of regions that
// overlap the closed time window [start, end]. It is used to cull what the
// rendering layer has to draw.
func (p Partition) Window(start, end int64) (from, to int) {
	if len(p.Regions) == 0 || end < start || end < p.Start() || start >= p.End {
		return 0, 0
	}
	from, ok := p.At(max(start, p.Start()))
	if !ok {
		from = 0
	}
	to, ok = p.At(min(end, p.End-1))
	if !ok {
		to = len(p.Regions) - 1
	}
	return from, to + 1
}

// VisibleItems returns the distinct items referenced by regions that overlap
// [start, end], in the order they are first met. Ids missing from items are
// skipped.
func (p Partition) VisibleItems(items Lookup, start, end int64) []Item {
	from, to := p.Window(start, end)
	seen := make(map[string]bool)
	var out []Item
	for i := from; i < to; i++ {
		for _, id := range p.Regions[i].ItemIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			if it, ok := items.Item(id); ok {
				out = append(out, it)
			}
		}
	}
	return out
}

// Levels assigns every indexed item the lowest stacking level not taken by
// another item overlapping it when it first appears. Overlapping items never
// share a level.
func (p Partition) Levels() map[string]int {
	levels := make(map[string]int)
	for _, r := range p.Regions {
		var taken map[int]bool
		for _, id := range r.ItemIDs {
			if _, ok := levels[id]; ok {
				continue
			}
			if taken == nil {
				taken = make(map[int]bool, len(r.ItemIDs))
				for _, other := range r.ItemIDs {
					if lvl, ok := levels[other]; ok {
						taken[lvl] = true
					}
				}
			}
			lvl := 0
			for taken[lvl] {
				lvl++
			}
			levels[id] = lvl
			taken[lvl] = true
		}
	}
	return levels
}

// Depth returns the largest number of items active in any single region.
func (p Partition) Depth() int {
	depth := 0
	for _, r := range p.Regions {
		depth = max(depth, len(r.ItemIDs))
	}
	return depth
}
