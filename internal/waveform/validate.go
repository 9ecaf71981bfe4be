package waveform

import (
	"errors"
	"fmt"
)

// Enumerator is a Lookup that can also list its items.
type Enumerator interface {
	Lookup
	Sorted() []Item
}

// Validate checks the partition invariants: regions are strictly ascending
// and end before End, no two neighbours share an id set, and every id refers
// to an item of lookup overlapping its region. A nil lookup skips the item
// checks. Checking that every indexed item is present in each region it
// overlaps needs the item list, so it only runs when lookup is an
// Enumerator such as *Store.
func (p Partition) Validate(items Lookup) error {
	if len(p.Regions) == 0 {
		return errors.New("partition has no regions")
	}

	var errs []error
	for i, r := range p.Regions {
		end := p.RegionEnd(i)
		if r.Start >= end {
			errs = append(errs, fmt.Errorf(
				"region %d: start %d not before end %d", i, r.Start, end,
			))
		}
		if i > 0 && sameSet(p.Regions[i-1].ItemIDs, r.ItemIDs) {
			errs = append(errs, fmt.Errorf(
				"regions %d and %d share item set %v", i-1, i, r.ItemIDs,
			))
		}

		seen := make(map[string]bool, len(r.ItemIDs))
		for _, id := range r.ItemIDs {
			if seen[id] {
				errs = append(errs, fmt.Errorf("region %d: duplicate id %q", i, id))
			}
			seen[id] = true

			if items == nil {
				continue
			}
			it, ok := items.Item(id)
			if !ok {
				errs = append(errs, fmt.Errorf("region %d: %q: %w", i, id, ErrUnknownItem))
				continue
			}
			if !it.Overlaps(r.Start, end) {
				errs = append(errs, fmt.Errorf(
					"region %d [%d, %d): %q [%d, %d) does not overlap",
					i, r.Start, end, id, it.Start, it.End,
				))
			}
		}
	}

	if all, ok := items.(Enumerator); ok {
		for _, it := range all.Sorted() {
			if !it.indexed() {
				continue
			}
			if err := p.checkCovered(it); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

// checkCovered reports an error when a region overlapping it is missing its id.
func (p Partition) checkCovered(it Item) error {
	first, last, ok := p.span(it.Start, it.End)
	if !ok {
		return nil
	}
	for i := first; i <= last; i++ {
		if !p.Regions[i].Has(it.ID) {
			return fmt.Errorf(
				"region %d: missing %q [%d, %d): %w",
				i, it.ID, it.Start, it.End, ErrNotIndexed,
			)
		}
	}
	return nil
}
