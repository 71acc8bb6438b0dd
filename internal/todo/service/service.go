package service

import (
	"context"
	"errors"
	"log/slog"

	"todolists/internal/todo/metrics"
	"todolists/internal/todo/models"
	id "todolists/pkg/domain"
	dErrors "todolists/pkg/domain-errors"
	"todolists/pkg/platform/sentinel"
	"todolists/pkg/requestcontext"
)

// Store is the data access contract the service depends on. Both the MongoDB
// store and the in-memory store satisfy it.
type Store interface {
	ListSummaries(ctx context.Context) (models.SummaryIterator, error)
	CreateList(ctx context.Context, name string) (id.ListID, error)
	GetList(ctx context.Context, listID id.ListID) (*models.List, error)
	DeleteList(ctx context.Context, listID id.ListID) (bool, error)
	CreateItem(ctx context.Context, listID id.ListID, label string) (*models.List, error)
	SetCheckedState(ctx context.Context, listID id.ListID, itemID id.ItemID, checked bool) (*models.List, error)
	DeleteItem(ctx context.Context, listID id.ListID, itemID id.ItemID) (*models.List, error)
}

// Service applies input rules on top of the store and translates store
// failures into coded domain errors.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// ListSummaries returns an iterator over all lists ordered by name. The
// caller must Close it. Errors surfaced by the iterator are already coded.
func (s *Service) ListSummaries(ctx context.Context) (models.SummaryIterator, error) {
	it, err := s.store.ListSummaries(ctx)
	if err != nil {
		return nil, s.translate(ctx, err, "list summaries", "")
	}
	return &codedIterator{SummaryIterator: it, translate: func(err error) error {
		return s.translate(ctx, err, "iterate summaries", "")
	}}, nil
}

func (s *Service) CreateList(ctx context.Context, name string) (*models.List, error) {
	name, err := models.NormalizeName(name)
	if err != nil {
		return nil, err
	}
	listID, err := s.store.CreateList(ctx, name)
	if err != nil {
		return nil, s.translate(ctx, err, "create list", "")
	}
	s.logger.InfoContext(ctx, "list created",
		"list_id", listID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementListsCreated()
	}
	return &models.List{ID: listID, Name: name, Items: []models.Item{}}, nil
}

func (s *Service) GetList(ctx context.Context, listID id.ListID) (*models.List, error) {
	list, err := s.store.GetList(ctx, listID)
	if err != nil {
		return nil, s.translate(ctx, err, "get list", "list not found")
	}
	return list, nil
}

// ListItems returns the items of a list in insertion order.
func (s *Service) ListItems(ctx context.Context, listID id.ListID) ([]models.Item, error) {
	list, err := s.GetList(ctx, listID)
	if err != nil {
		return nil, err
	}
	return list.Items, nil
}

// DeleteList reports whether a list was removed. Deleting an absent list
// succeeds with false.
func (s *Service) DeleteList(ctx context.Context, listID id.ListID) (bool, error) {
	deleted, err := s.store.DeleteList(ctx, listID)
	if err != nil {
		return false, s.translate(ctx, err, "delete list", "")
	}
	if deleted {
		s.logger.InfoContext(ctx, "list deleted",
			"list_id", listID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
		if s.metrics != nil {
			s.metrics.IncrementListsDeleted()
		}
	}
	return deleted, nil
}

// CreateItem appends an item and returns the updated list together with the
// new item, which is the list's last element.
func (s *Service) CreateItem(ctx context.Context, listID id.ListID, label string) (*models.List, models.Item, error) {
	label, err := models.NormalizeLabel(label)
	if err != nil {
		return nil, models.Item{}, err
	}
	list, err := s.store.CreateItem(ctx, listID, label)
	if err != nil {
		return nil, models.Item{}, s.translate(ctx, err, "create item", "list not found")
	}
	item, ok := list.LastItem()
	if !ok {
		err := dErrors.New(dErrors.CodeInternal, "created item missing from list")
		s.logger.ErrorContext(ctx, "create item", "list_id", listID.String(), "error", err)
		return nil, models.Item{}, err
	}
	s.logger.InfoContext(ctx, "item created",
		"list_id", listID.String(),
		"item_id", item.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementItemsCreated()
	}
	return list, item, nil
}

func (s *Service) SetCheckedState(ctx context.Context, listID id.ListID, itemID id.ItemID, checked bool) (*models.List, error) {
	list, err := s.store.SetCheckedState(ctx, listID, itemID, checked)
	if err != nil {
		return nil, s.translate(ctx, err, "set checked state", "list or item not found")
	}
	s.logger.DebugContext(ctx, "item checked state set",
		"list_id", listID.String(),
		"item_id", itemID.String(),
		"checked", checked,
	)
	return list, nil
}

func (s *Service) DeleteItem(ctx context.Context, listID id.ListID, itemID id.ItemID) (*models.List, error) {
	list, err := s.store.DeleteItem(ctx, listID, itemID)
	if err != nil {
		return nil, s.translate(ctx, err, "delete item", "list or item not found")
	}
	s.logger.InfoContext(ctx, "item deleted",
		"list_id", listID.String(),
		"item_id", itemID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementItemsDeleted()
	}
	return list, nil
}

// translate maps store errors to coded errors. Coded errors (invalid ids)
// pass through. NotFound is an expected outcome and is not logged.
func (s *Service) translate(ctx context.Context, err error, op, notFound string) error {
	var coded *dErrors.Error
	switch {
	case errors.As(err, &coded):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		if notFound == "" {
			notFound = "not found"
		}
		return dErrors.New(dErrors.CodeNotFound, notFound)
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "request timed out")
	case errors.Is(err, sentinel.ErrUnavailable):
		s.logger.ErrorContext(ctx, "store unavailable", "op", op, "error", err)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "data store is unavailable")
	case errors.Is(err, sentinel.ErrInvariantViolation):
		s.logger.ErrorContext(ctx, "stored document is malformed", "op", op, "error", err)
		return dErrors.Wrap(err, dErrors.CodeInternal, "stored data is inconsistent")
	default:
		s.logger.ErrorContext(ctx, "store operation failed", "op", op, "error", err)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+op)
	}
}

// codedIterator translates the wrapped iterator's error on the way out.
type codedIterator struct {
	models.SummaryIterator
	translate func(error) error
}

func (it *codedIterator) Err() error {
	if err := it.SummaryIterator.Err(); err != nil {
		return it.translate(err)
	}
	return nil
}
