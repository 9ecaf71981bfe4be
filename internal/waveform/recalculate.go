package waveform

import (
	"fmt"
)

// Recalculate applies a single item change to p and returns the new
// partition. items must still hold the pre-edit version of the target. next
// is the target's new interval, or nil to delete it.
//
// Only the regions overlapping the old or the new interval are rebuilt. The
// rebuilt range is folded from the ids it references, sorted like Build, and
// spliced back between the untouched regions, merging equal neighbours at
// both junctions.
func Recalculate(
	p Partition,
	items Lookup,
	id string,
	next *Item,
) (Partition, error) {
	old, ok := items.Item(id)
	if !ok {
		return p, fmt.Errorf("recalculate %q: %w", id, ErrUnknownItem)
	}

	var target *Item
	if next != nil {
		updated := *next
		updated.ID = id
		if err := p.checkInterval(updated); err != nil {
			return p, err
		}
		target = &updated
	}

	if !old.indexed() {
		if target != nil && target.indexed() {
			return p.Insert(*target), nil
		}
		return p, nil
	}

	first, last, ok := p.span(old.Start, old.End)
	if !ok {
		return p, fmt.Errorf("recalculate %q: %w", id, ErrNotIndexed)
	}
	if target != nil {
		if f, l, ok := p.span(target.Start, target.End); ok {
			first = min(first, f)
			last = max(last, l)
		}
	}

	affected, err := collect(p, items, id, target, first, last)
	if err != nil {
		return p, err
	}
	SortItems(affected)

	sub := Partition{
		Regions: []Region{{Start: p.Regions[first].Start}},
		End:     p.RegionEnd(last),
	}
	for _, it := range affected {
		sub = sub.Insert(it)
	}

	return Partition{
		Regions: splice(p.Regions, first, last, sub.Regions),
		End:     p.End,
	}, nil
}

// InsertOrUpdate indexes it and records it in store. An id already present in
// store is treated as a move or stretch of that item.
func InsertOrUpdate(p Partition, store *Store, it Item) (Partition, error) {
	if err := p.checkInterval(it); err != nil {
		return p, err
	}
	if _, exists := store.Item(it.ID); exists {
		next, err := Recalculate(p, store, it.ID, &it)
		if err != nil {
			return p, err
		}
		store.Set(it)
		return next, nil
	}

	store.Set(it)
	if !it.indexed() {
		return p, nil
	}
	return p.Insert(it), nil
}

// Remove deletes id from both the partition and store.
func Remove(p Partition, store *Store, id string) (Partition, error) {
	next, err := Recalculate(p, store, id, nil)
	if err != nil {
		return p, err
	}
	store.Delete(id)
	return next, nil
}

// collect returns the items referenced by regions first..last with the target
// replaced by its new version, or dropped when target is nil.
func collect(
	p Partition,
	items Lookup,
	id string,
	target *Item,
	first, last int,
) ([]Item, error) {
	seen := make(map[string]bool)
	found := false
	var out []Item

	for i := first; i <= last; i++ {
		for _, rid := range p.Regions[i].ItemIDs {
			if seen[rid] {
				continue
			}
			seen[rid] = true

			if rid == id {
				found = true
				if target != nil && target.indexed() {
					out = append(out, *target)
				}
				continue
			}

			it, ok := items.Item(rid)
			if !ok {
				return nil, fmt.Errorf(
					"region %d references %q: %w",
					i,
					rid,
					ErrUnknownItem,
				)
			}
			out = append(out, it)
		}
	}

	if !found {
		return nil, fmt.Errorf("recalculate %q: %w", id, ErrNotIndexed)
	}
	return out, nil
}

// splice replaces regions[first..last] with rebuilt.
func splice(regions []Region, first, last int, rebuilt []Region) []Region {
	out := make([]Region, 0, len(regions)-(last-first+1)+len(rebuilt))
	out = append(out, regions[:first]...)
	for _, r := range rebuilt {
		out = appendMerged(out, r)
	}
	if last+1 < len(regions) {
		out = appendMerged(out, regions[last+1])
		out = append(out, regions[last+2:]...)
	}
	return out
}

// appendMerged appends r unless it would repeat the previous region's id set,
// in which case the previous region simply extends over r.
func appendMerged(regions []Region, r Region) []Region {
	if n := len(regions); n > 0 && sameSet(regions[n-1].ItemIDs, r.ItemIDs) {
		return regions
	}
	return append(regions, r)
}

// span returns the first and last region indexes overlapping [start, end).
func (p Partition) span(start, end int64) (int, int, bool) {
	start = max(start, p.Start())
	end = min(end, p.End)
	if start >= end {
		return -1, -1, false
	}
	first, ok := p.At(start)
	if !ok {
		return -1, -1, false
	}
	last, ok := p.At(end - 1)
	if !ok {
		return -1, -1, false
	}
	return first, last, true
}

func (p Partition) checkInterval(it Item) error {
	if it.End <= it.Start || it.Start < p.Start() || it.End > p.End {
		return fmt.Errorf(
			"%w: %q [%d, %d) outside [%d, %d)",
			ErrInvalidInterval,
			it.ID,
			it.Start,
			it.End,
			p.Start(),
			p.End,
		)
	}
	return nil
}
