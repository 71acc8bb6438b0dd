package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"todolists/internal/todo/metrics"
	"todolists/internal/todo/models"
	id "todolists/pkg/domain"
	dErrors "todolists/pkg/domain-errors"
	"todolists/pkg/platform/sentinel"
)

const tracerName = "todolists/internal/todo/store"

// Mongo persists lists as single documents in a MongoDB collection.
//
// Every mutation is one single-document update, so MongoDB's per-document
// atomicity is the only concurrency control; the store holds no locks and no
// state between calls.
type Mongo struct {
	coll    *mongo.Collection
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures a Mongo store.
type Option func(*Mongo)

// WithMetrics records per-operation durations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Mongo) {
		s.metrics = m
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(s *Mongo) {
		s.tracer = t
	}
}

// NewMongo constructs a store over the given collection handle.
func NewMongo(coll *mongo.Collection, opts ...Option) *Mongo {
	s := &Mongo{
		coll:   coll,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListSummaries streams {id, name, item_count} for every list ordered by name.
// item_count is computed by the server; items are never transferred.
func (s *Mongo) ListSummaries(ctx context.Context) (models.SummaryIterator, error) {
	ctx, finish := s.begin(ctx, "ListSummaries", id.ListID{})
	pipeline := mongo.Pipeline{
		{{Key: "$project", Value: bson.D{
			{Key: fieldName, Value: 1},
			{Key: fieldItemCount, Value: bson.D{{Key: "$size", Value: "$" + fieldItems}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: fieldName, Value: 1}, {Key: fieldID, Value: 1}}}},
	}
	cur, err := s.coll.Aggregate(ctx, pipeline)
	err = classify("aggregate list summaries", err)
	finish(err)
	if err != nil {
		return nil, err
	}
	return newSummaryCursor(cur), nil
}

// CreateList inserts an empty list and returns its store-assigned id.
func (s *Mongo) CreateList(ctx context.Context, name string) (id.ListID, error) {
	ctx, finish := s.begin(ctx, "CreateList", id.ListID{})
	listID, err := s.createList(ctx, name)
	finish(err)
	return listID, err
}

func (s *Mongo) createList(ctx context.Context, name string) (id.ListID, error) {
	res, err := s.coll.InsertOne(ctx, bson.D{
		{Key: fieldName, Value: name},
		{Key: fieldItems, Value: bson.A{}},
	})
	if err != nil {
		return id.ListID{}, classify("insert list", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok || oid.IsZero() {
		return id.ListID{}, invariantf("inserted id is %T, not an ObjectID", res.InsertedID)
	}
	return id.ListID(oid), nil
}

// GetList returns the full list, or sentinel.ErrNotFound.
func (s *Mongo) GetList(ctx context.Context, listID id.ListID) (*models.List, error) {
	if err := requireListID(listID); err != nil {
		return nil, err
	}
	ctx, finish := s.begin(ctx, "GetList", listID)
	raw, err := s.coll.FindOne(ctx, byListID(listID)).Raw()
	list, err := s.decodeResult("find list", raw, err)
	finish(err)
	return list, err
}

// DeleteList removes the list and its items. It reports whether a list was
// removed; an absent list is not an error.
func (s *Mongo) DeleteList(ctx context.Context, listID id.ListID) (bool, error) {
	if err := requireListID(listID); err != nil {
		return false, err
	}
	ctx, finish := s.begin(ctx, "DeleteList", listID)
	res, err := s.coll.DeleteOne(ctx, byListID(listID))
	err = classify("delete list", err)
	finish(err)
	if err != nil {
		return false, err
	}
	return res.DeletedCount == 1, nil
}

// CreateItem appends an unchecked item with a fresh id and returns the list as
// of that append, so the new item is its last element.
func (s *Mongo) CreateItem(ctx context.Context, listID id.ListID, label string) (*models.List, error) {
	if err := requireListID(listID); err != nil {
		return nil, err
	}
	ctx, finish := s.begin(ctx, "CreateItem", listID)
	update := bson.D{{Key: "$push", Value: bson.D{
		{Key: fieldItems, Value: newItemDocument(id.NewItemID(), label)},
	}}}
	list, err := s.findAndUpdate(ctx, "push item", byListID(listID), update)
	finish(err)
	return list, err
}

// SetCheckedState sets the checked flag of one item. A missing list or item
// yields sentinel.ErrNotFound.
func (s *Mongo) SetCheckedState(ctx context.Context, listID id.ListID, itemID id.ItemID, checked bool) (*models.List, error) {
	if err := requireIDs(listID, itemID); err != nil {
		return nil, err
	}
	ctx, finish := s.begin(ctx, "SetCheckedState", listID)
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: fieldItems + ".$." + fieldChecked, Value: checked},
	}}}
	list, err := s.findAndUpdate(ctx, "set checked state", byItemID(listID, itemID), update)
	finish(err)
	return list, err
}

// DeleteItem removes one item. Deleting an item that is already gone yields
// sentinel.ErrNotFound.
func (s *Mongo) DeleteItem(ctx context.Context, listID id.ListID, itemID id.ItemID) (*models.List, error) {
	if err := requireIDs(listID, itemID); err != nil {
		return nil, err
	}
	ctx, finish := s.begin(ctx, "DeleteItem", listID)
	update := bson.D{{Key: "$pull", Value: bson.D{
		{Key: fieldItems, Value: bson.D{{Key: fieldID, Value: itemID.String()}}},
	}}}
	list, err := s.findAndUpdate(ctx, "pull item", byItemID(listID, itemID), update)
	finish(err)
	return list, err
}

func (s *Mongo) findAndUpdate(ctx context.Context, op string, filter, update bson.D) (*models.List, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	raw, err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Raw()
	return s.decodeResult(op, raw, err)
}

func (s *Mongo) decodeResult(op string, raw bson.Raw, err error) (*models.List, error) {
	if err != nil {
		return nil, classify(op, err)
	}
	return decodeList(raw)
}

// begin opens a span for op and returns a func that closes it and records
// the outcome. NotFound is an expected result and is not marked as an error.
func (s *Mongo) begin(ctx context.Context, op string, listID id.ListID) (context.Context, func(error)) {
	start := time.Now()
	attrs := []attribute.KeyValue{
		attribute.String("db.system", "mongodb"),
		attribute.String("db.operation", op),
	}
	if s.coll != nil {
		attrs = append(attrs, attribute.String("db.collection.name", s.coll.Name()))
	}
	if !listID.IsNil() {
		attrs = append(attrs, attribute.String("todo.list_id", listID.String()))
	}
	ctx, span := s.tracer.Start(ctx, "todo.store/"+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	return ctx, func(err error) {
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if s.metrics != nil {
			s.metrics.ObserveStoreOperation(op, outcome(err), start)
		}
	}
}

func byListID(listID id.ListID) bson.D {
	return bson.D{{Key: fieldID, Value: listID.ObjectID()}}
}

func byItemID(listID id.ListID, itemID id.ItemID) bson.D {
	return bson.D{
		{Key: fieldID, Value: listID.ObjectID()},
		{Key: fieldItems + "." + fieldID, Value: itemID.String()},
	}
}

func requireListID(listID id.ListID) error {
	if listID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "list id is required")
	}
	return nil
}

func requireIDs(listID id.ListID, itemID id.ItemID) error {
	if err := requireListID(listID); err != nil {
		return err
	}
	if itemID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "item id is required")
	}
	return nil
}
