package models

import (
	"context"
	"strings"

	id "todolists/pkg/domain"
	dErrors "todolists/pkg/domain-errors"
)

const (
	MaxNameLength  = 256
	MaxLabelLength = 1000
)

// List is a named, ordered collection of checkable items.
//
// Invariants:
//   - ID is assigned by the store at creation and never changes
//   - Name is non-empty and fixed at creation
//   - Items keep insertion order; item ids are unique within the list
type List struct {
	ID    id.ListID
	Name  string
	Items []Item
}

// Item is a checkable entry embedded in a List. It has no identity outside its list.
type Item struct {
	ID      id.ItemID
	Label   string
	Checked bool
}

// ListSummary is a read projection of a List. ItemCount is computed when the
// projection is produced and never stored.
type ListSummary struct {
	ID        id.ListID
	Name      string
	ItemCount int
}

// FindItem returns the item with the given id.
func (l *List) FindItem(itemID id.ItemID) (Item, bool) {
	for _, it := range l.Items {
		if it.ID == itemID {
			return it, true
		}
	}
	return Item{}, false
}

// LastItem returns the most recently appended item.
func (l *List) LastItem() (Item, bool) {
	if len(l.Items) == 0 {
		return Item{}, false
	}
	return l.Items[len(l.Items)-1], true
}

// NormalizeName trims a list name and checks it against the name invariants.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(name) > MaxNameLength {
		return "", dErrors.New(dErrors.CodeValidation, "name must be 256 characters or less")
	}
	return name, nil
}

// NormalizeLabel trims an item label and bounds its length.
func NormalizeLabel(label string) (string, error) {
	label = strings.TrimSpace(label)
	if len(label) > MaxLabelLength {
		return "", dErrors.New(dErrors.CodeValidation, "label must be 1000 characters or less")
	}
	return label, nil
}

// SummaryIterator yields list summaries one at a time, in name order. It is
// single-pass: once exhausted or closed it cannot be rewound, and a new
// iterator must be requested to read the lists again.
//
//	it, err := store.ListSummaries(ctx)
//	if err != nil { ... }
//	defer it.Close(ctx)
//	for it.Next(ctx) {
//		s := it.Summary()
//	}
//	if err := it.Err(); err != nil { ... }
type SummaryIterator interface {
	Next(ctx context.Context) bool
	Summary() ListSummary
	Err() error
	Close(ctx context.Context) error
}
