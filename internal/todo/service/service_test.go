package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"todolists/internal/todo/metrics"
	"todolists/internal/todo/models"
	"todolists/internal/todo/service/mocks"
	"todolists/internal/todo/store"
	id "todolists/pkg/domain"
	dErrors "todolists/pkg/domain-errors"
	"todolists/pkg/platform/sentinel"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *mocks.MockStore
	metrics *metrics.Metrics
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.ctx = context.Background()
	s.store = mocks.NewMockStore(ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = New(s.store,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
	)
}

func (s *ServiceSuite) TestCreateList() {
	s.Run("trims the name before storing", func() {
		listID := id.NewListID()
		s.store.EXPECT().CreateList(gomock.Any(), "Groceries").Return(listID, nil)

		list, err := s.service.CreateList(s.ctx, "  Groceries  ")
		s.Require().NoError(err)
		s.Equal(listID, list.ID)
		s.Equal("Groceries", list.Name)
		s.Empty(list.Items)
	})

	s.Run("rejects a blank name without touching the store", func() {
		_, err := s.service.CreateList(s.ctx, "   ")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects an overlong name", func() {
		_, err := s.service.CreateList(s.ctx, strings.Repeat("n", models.MaxNameLength+1))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("store unavailable", func() {
		s.store.EXPECT().CreateList(gomock.Any(), "x").
			Return(id.ListID{}, fmt.Errorf("insert list: %w: %w", sentinel.ErrUnavailable, errors.New("connection refused")))

		_, err := s.service.CreateList(s.ctx, "x")
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	s.Equal(float64(1), promtest.ToFloat64(s.metrics.ListsCreated))
}

func (s *ServiceSuite) TestGetList() {
	listID := id.NewListID()

	s.Run("not found", func() {
		s.store.EXPECT().GetList(gomock.Any(), listID).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.GetList(s.ctx, listID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal("list not found", err.Error())
	})

	s.Run("malformed stored document", func() {
		s.store.EXPECT().GetList(gomock.Any(), listID).
			Return(nil, fmt.Errorf("%w: list has no name", sentinel.ErrInvariantViolation))

		_, err := s.service.GetList(s.ctx, listID)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.ErrorIs(err, sentinel.ErrInvariantViolation)
	})

	s.Run("request deadline is a timeout, not an outage", func() {
		s.store.EXPECT().GetList(gomock.Any(), listID).
			Return(nil, fmt.Errorf("find list: %w", context.DeadlineExceeded))

		_, err := s.service.GetList(s.ctx, listID)
		s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
	})

	s.Run("invalid identifier passes through", func() {
		s.store.EXPECT().GetList(gomock.Any(), id.ListID{}).
			Return(nil, dErrors.New(dErrors.CodeInvalidInput, "list id is required"))

		_, err := s.service.GetList(s.ctx, id.ListID{})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("unclassified store error", func() {
		s.store.EXPECT().GetList(gomock.Any(), listID).Return(nil, errors.New("boom"))

		_, err := s.service.GetList(s.ctx, listID)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestListItems() {
	listID := id.NewListID()
	items := []models.Item{{ID: id.NewItemID(), Label: "Milk"}, {ID: id.NewItemID(), Label: "Eggs", Checked: true}}
	s.store.EXPECT().GetList(gomock.Any(), listID).Return(&models.List{ID: listID, Name: "Groceries", Items: items}, nil)

	got, err := s.service.ListItems(s.ctx, listID)
	s.Require().NoError(err)
	s.Equal(items, got)
}

func (s *ServiceSuite) TestDeleteList() {
	listID := id.NewListID()

	s.store.EXPECT().DeleteList(gomock.Any(), listID).Return(true, nil)
	deleted, err := s.service.DeleteList(s.ctx, listID)
	s.Require().NoError(err)
	s.True(deleted)

	s.store.EXPECT().DeleteList(gomock.Any(), listID).Return(false, nil)
	deleted, err = s.service.DeleteList(s.ctx, listID)
	s.Require().NoError(err)
	s.False(deleted)

	s.Equal(float64(1), promtest.ToFloat64(s.metrics.ListsDeleted))
}

func (s *ServiceSuite) TestCreateItem() {
	listID := id.NewListID()

	s.Run("returns the appended item", func() {
		existing := models.Item{ID: id.NewItemID(), Label: "Milk"}
		added := models.Item{ID: id.NewItemID(), Label: "Eggs"}
		s.store.EXPECT().CreateItem(gomock.Any(), listID, "Eggs").
			Return(&models.List{ID: listID, Name: "Groceries", Items: []models.Item{existing, added}}, nil)

		list, item, err := s.service.CreateItem(s.ctx, listID, " Eggs ")
		s.Require().NoError(err)
		s.Len(list.Items, 2)
		s.Equal(added, item)
	})

	s.Run("rejects an overlong label", func() {
		_, _, err := s.service.CreateItem(s.ctx, listID, strings.Repeat("l", models.MaxLabelLength+1))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("missing list", func() {
		s.store.EXPECT().CreateItem(gomock.Any(), listID, "x").Return(nil, sentinel.ErrNotFound)

		_, _, err := s.service.CreateItem(s.ctx, listID, "x")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Equal(float64(1), promtest.ToFloat64(s.metrics.ItemsCreated))
}

func (s *ServiceSuite) TestItemMutationsNotFound() {
	listID, itemID := id.NewListID(), id.NewItemID()
	s.store.EXPECT().SetCheckedState(gomock.Any(), listID, itemID, true).Return(nil, sentinel.ErrNotFound)
	s.store.EXPECT().DeleteItem(gomock.Any(), listID, itemID).Return(nil, sentinel.ErrNotFound)

	_, err := s.service.SetCheckedState(s.ctx, listID, itemID, true)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Equal("list or item not found", err.Error())

	_, err = s.service.DeleteItem(s.ctx, listID, itemID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	s.Equal(float64(0), promtest.ToFloat64(s.metrics.ItemsDeleted))
}

func (s *ServiceSuite) TestListSummaries() {
	s.Run("iterator errors are coded", func() {
		s.store.EXPECT().ListSummaries(gomock.Any()).Return(&failingIterator{
			err: fmt.Errorf("%w: $size of non-array", sentinel.ErrInvariantViolation),
		}, nil)

		it, err := s.service.ListSummaries(s.ctx)
		s.Require().NoError(err)
		s.False(it.Next(s.ctx))
		s.True(dErrors.HasCode(it.Err(), dErrors.CodeInternal))
		s.NoError(it.Close(s.ctx))
	})

	s.Run("store unavailable before iteration", func() {
		s.store.EXPECT().ListSummaries(gomock.Any()).Return(nil, fmt.Errorf("%w", sentinel.ErrUnavailable))

		_, err := s.service.ListSummaries(s.ctx)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}

// Exercises the service against the real in-memory store end to end.
func TestServiceOverInMemoryStore(t *testing.T) {
	ctx := context.Background()
	svc := New(store.NewInMemory(), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	list, err := svc.CreateList(ctx, "Groceries")
	if err != nil {
		t.Fatal(err)
	}
	_, milk, err := svc.CreateItem(ctx, list.ID, "Milk")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SetCheckedState(ctx, list.ID, milk.ID, true); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.DeleteItem(ctx, list.ID, milk.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.DeleteItem(ctx, list.ID, milk.ID); !dErrors.HasCode(err, dErrors.CodeNotFound) {
		t.Fatalf("second delete: got %v, want not_found", err)
	}
	items, err := svc.ListItems(ctx, list.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}
}

type failingIterator struct {
	err error
}

func (f *failingIterator) Next(context.Context) bool { return false }
func (f *failingIterator) Summary() models.ListSummary { return models.ListSummary{} }
func (f *failingIterator) Err() error { return f.err }
func (f *failingIterator) Close(context.Context) error { return nil }
