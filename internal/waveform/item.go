package waveform

import (
	"errors"
	"sort"
)

var (
	// ErrUnknownItem is returned when an id is not present in the item store.
	ErrUnknownItem = errors.New("unknown waveform item")
	// ErrNotIndexed is returned when an item that should be in the region
	// partition cannot be found there. It means the caller let the store and
	// the partition drift apart.
	ErrNotIndexed = errors.New("waveform item not indexed")
	// ErrInvalidInterval is returned for intervals with no positive width or
	// that fall outside the timeline.
	ErrInvalidInterval = errors.New("invalid waveform interval")
)

// kind of waveform item
type Kind int

const (
	// KindPrimary items are caption clips and are the only kind indexed in
	// the region partition.
	KindPrimary Kind = iota
	// KindPreview is reserved for non-indexed overlays such as preview
	// chunks. Items of this kind are stored but never indexed.
	KindPreview
)

func (k Kind) String() string {
	switch k {
	case KindPrimary:
		return "primary"
	case KindPreview:
		return "preview"
	default:
		return "unknown"
	}
}

// Item is a half-open time interval [Start, End) in milliseconds.
type Item struct {
	ID    string
	Start int64
	End   int64
	Kind  Kind
}

func (it Item) Duration() int64 {
	return it.End - it.Start
}

// reports whether ms lies inside [Start, End)
func (it Item) Contains(ms int64) bool {
	return ms >= it.Start && ms < it.End
}

// reports whether the item shares any time with [start, end)
func (it Item) Overlaps(start, end int64) bool {
	return it.Start < end && it.End > start
}

func (it Item) indexed() bool {
	return it.Kind == KindPrimary
}

// Lookup is a read-only view of an item store.
type Lookup interface {
	Item(id string) (Item, bool)
}

// Store maps item ids to items. It is owned by a single editor; the region
// partition only ever holds ids.
type Store struct {
	items map[string]Item
}

func NewStore() *Store {
	return &Store{items: make(map[string]Item)}
}

func (s *Store) Item(id string) (Item, bool) {
	it, ok := s.items[id]
	return it, ok
}

func (s *Store) Set(it Item) {
	s.items[it.ID] = it
}

func (s *Store) Delete(id string) {
	delete(s.items, id)
}

func (s *Store) Len() int {
	return len(s.items)
}

// IDs returns all ids in no particular order.
func (s *Store) IDs() []string {
	ids := make([]string, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	return ids
}

// Sorted returns a copy of all items ordered with SortItems. Items with
// identical intervals are ordered by id so the result is deterministic.
func (s *Store) Sorted() []Item {
	out := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		if out[i].End != out[j].End {
			return out[i].End > out[j].End
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SortItems orders items by start ascending, then end descending. Items with
// identical intervals keep their relative order.
func SortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Start != items[j].Start {
			return items[i].Start < items[j].Start
		}
		return items[i].End > items[j].End
	})
}
