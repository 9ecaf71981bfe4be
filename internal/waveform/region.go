package waveform

import (
	"sort"
)

// Region is a maximal stretch of the timeline over which the set of active
// items does not change. ItemIDs is kept in insertion order, which is also the
// stacking order for display.
type Region struct {
	Start   int64
	ItemIDs []string
}

func (r Region) Has(id string) bool {
	for _, existing := range r.ItemIDs {
		if existing == id {
			return true
		}
	}
	return false
}

// Partition is an ordered, gapless sequence of regions covering
// [Regions[0].Start, End). Only the last region extends to End.
//
// A Partition is a value: operations return a new Partition and never modify
// the ItemIDs slices of the receiver, so older partitions stay valid.
type Partition struct {
	Regions []Region
	End     int64
}

// NewPartition returns a single empty region spanning [0, end).
func NewPartition(end int64) Partition {
	return Partition{Regions: []Region{{Start: 0}}, End: end}
}

// Build indexes items from scratch over [0, end). Items are folded through
// Insert ordered by start ascending, end descending. Every item is placed in
// the returned store; only primary items are indexed.
func Build(items []Item, end int64) (Partition, *Store) {
	sorted := append([]Item(nil), items...)
	SortItems(sorted)

	store := NewStore()
	p := NewPartition(end)
	for _, it := range sorted {
		store.Set(it)
		if it.indexed() {
			p = p.Insert(it)
		}
	}
	return p, store
}

func (p Partition) Len() int {
	return len(p.Regions)
}

// effective end of region i
func (p Partition) RegionEnd(i int) int64 {
	if i+1 < len(p.Regions) {
		return p.Regions[i+1].Start
	}
	return p.End
}

// Start of the covered range.
func (p Partition) Start() int64 {
	if len(p.Regions) == 0 {
		return 0
	}
	return p.Regions[0].Start
}

// Insert splits every region overlapping [it.Start, it.End) and appends the
// item id to the overlapped parts. Regions that already hold the id are left
// alone, which makes re-inserting an identical item a no-op. Intervals without
// positive width are ignored.
func (p Partition) Insert(it Item) Partition {
	if it.End <= it.Start {
		return p
	}
	return Partition{Regions: insert(p.Regions, p.End, it), End: p.End}
}

func insert(regions []Region, end int64, it Item) []Region {
	out := make([]Region, 0, len(regions)+2)
	for i, r := range regions {
		regionEnd := end
		if i+1 < len(regions) {
			regionEnd = regions[i+1].Start
		}

		// half-open: a region starting exactly at it.End is untouched
		overlap := r.Start < it.End && regionEnd > it.Start
		if !overlap || r.Has(it.ID) {
			out = append(out, r)
			continue
		}

		if it.Start > r.Start {
			out = append(out, Region{Start: r.Start, ItemIDs: r.ItemIDs})
		}
		out = append(out, Region{
			Start:   max(it.Start, r.Start),
			ItemIDs: withID(r.ItemIDs, it.ID),
		})
		if it.End < regionEnd {
			out = append(out, Region{Start: it.End, ItemIDs: r.ItemIDs})
		}
	}
	return out
}

// At returns the index of the region whose [start, end) contains ms. A
// boundary belongs to the region starting there.
func (p Partition) At(ms int64) (int, bool) {
	if len(p.Regions) == 0 || ms < p.Regions[0].Start || ms >= p.End {
		return -1, false
	}
	i := sort.Search(len(p.Regions), func(i int) bool {
		return p.Regions[i].Start > ms
	})
	return i - 1, true
}

// Equal compares two partitions region by region, treating ItemIDs as sets.
func (p Partition) Equal(q Partition) bool {
	if p.End != q.End || len(p.Regions) != len(q.Regions) {
		return false
	}
	for i := range p.Regions {
		if p.Regions[i].Start != q.Regions[i].Start {
			return false
		}
		if !sameSet(p.Regions[i].ItemIDs, q.Regions[i].ItemIDs) {
			return false
		}
	}
	return true
}

func withID(ids []string, id string) []string {
	out := make([]string, len(ids), len(ids)+1)
	copy(out, ids)
	return append(out, id)
}

// ids within a region are unique, so equal length plus containment is enough
func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, id := range a {
		found := false
		for _, other := range b {
			if other == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
