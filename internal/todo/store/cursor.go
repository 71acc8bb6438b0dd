package store

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"todolists/internal/todo/models"
)

// summaryCursor adapts a driver cursor over the summary aggregation to
// models.SummaryIterator. Documents are decoded as they are pulled, so a
// malformed document surfaces as an invariant violation from Err.
type summaryCursor struct {
	cur     *mongo.Cursor
	current models.ListSummary
	err     error
	done    bool
}

func newSummaryCursor(cur *mongo.Cursor) *summaryCursor {
	return &summaryCursor{cur: cur}
}

func (c *summaryCursor) Next(ctx context.Context) bool {
	if c.done {
		return false
	}
	if !c.cur.Next(ctx) {
		c.done = true
		c.err = classify("iterate list summaries", c.cur.Err())
		return false
	}
	s, err := decodeSummary(c.cur.Current)
	if err != nil {
		c.done = true
		c.err = err
		return false
	}
	c.current = s
	return true
}

func (c *summaryCursor) Summary() models.ListSummary {
	return c.current
}

func (c *summaryCursor) Err() error {
	return c.err
}

func (c *summaryCursor) Close(ctx context.Context) error {
	c.done = true
	return c.cur.Close(ctx)
}

// SliceIterator is a SummaryIterator over summaries already held in memory.
type SliceIterator struct {
	summaries []models.ListSummary
	pos       int
	closed    bool
}

// NewSliceIterator returns an iterator yielding summaries in the given order.
func NewSliceIterator(summaries []models.ListSummary) *SliceIterator {
	return &SliceIterator{summaries: summaries, pos: -1}
}

func (it *SliceIterator) Next(ctx context.Context) bool {
	if it.closed || it.pos+1 >= len(it.summaries) {
		it.pos = len(it.summaries)
		return false
	}
	it.pos++
	return true
}

func (it *SliceIterator) Summary() models.ListSummary {
	if it.pos < 0 || it.pos >= len(it.summaries) {
		return models.ListSummary{}
	}
	return it.summaries[it.pos]
}

func (it *SliceIterator) Err() error {
	return nil
}

func (it *SliceIterator) Close(ctx context.Context) error {
	it.closed = true
	return nil
}
