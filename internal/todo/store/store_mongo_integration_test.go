//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"todolists/internal/todo/metrics"
	"todolists/internal/todo/models"
	"todolists/internal/todo/store"
	id "todolists/pkg/domain"
	"todolists/pkg/platform/sentinel"
	"todolists/pkg/testutil/containers"
)

const collectionName = "todo_lists"

type MongoStoreSuite struct {
	suite.Suite
	mongo   *containers.MongoContainer
	coll    *mongo.Collection
	metrics *metrics.Metrics
	store   *store.Mongo
	ctx     context.Context
}

func TestMongoStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(MongoStoreSuite))
}

func (s *MongoStoreSuite) SetupSuite() {
	s.mongo = containers.GetManager().GetMongo(s.T())
	s.coll = s.mongo.Collection(collectionName)
}

func (s *MongoStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.Require().NoError(s.mongo.ClearCollections(s.ctx, collectionName))
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.store = store.NewMongo(s.coll, store.WithMetrics(s.metrics))
}

func (s *MongoStoreSuite) summaries() []models.ListSummary {
	it, err := s.store.ListSummaries(s.ctx)
	s.Require().NoError(err)
	defer it.Close(s.ctx)
	var out []models.ListSummary
	for it.Next(s.ctx) {
		out = append(out, it.Summary())
	}
	s.Require().NoError(it.Err())
	return out
}

func (s *MongoStoreSuite) TestGroceriesWalkthrough() {
	listID, err := s.store.CreateList(s.ctx, "Groceries")
	s.Require().NoError(err)

	list, err := s.store.CreateItem(s.ctx, listID, "Milk")
	s.Require().NoError(err)
	milk, _ := list.LastItem()

	list, err = s.store.CreateItem(s.ctx, listID, "Eggs")
	s.Require().NoError(err)
	s.Require().Len(list.Items, 2)
	eggs, _ := list.LastItem()
	s.Equal("Eggs", eggs.Label)

	list, err = s.store.SetCheckedState(s.ctx, listID, milk.ID, true)
	s.Require().NoError(err)
	s.True(list.Items[0].Checked)

	list, err = s.store.DeleteItem(s.ctx, listID, milk.ID)
	s.Require().NoError(err)
	s.Require().Len(list.Items, 1)
	s.Equal(eggs.ID, list.Items[0].ID)

	s.Equal([]models.ListSummary{{ID: listID, Name: "Groceries", ItemCount: 1}}, s.summaries())

	deleted, err := s.store.DeleteList(s.ctx, listID)
	s.Require().NoError(err)
	s.True(deleted)
	deleted, err = s.store.DeleteList(s.ctx, listID)
	s.Require().NoError(err)
	s.False(deleted)

	_, err = s.store.GetList(s.ctx, listID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.Equal(1, promtest.CollectAndCount(s.metrics.StoreOpDuration.WithLabelValues("GetList", "not_found").(prometheus.Histogram)))
}

func (s *MongoStoreSuite) TestSummariesOrderedByName() {
	b, _ := s.store.CreateList(s.ctx, "beta")
	a, _ := s.store.CreateList(s.ctx, "alpha")
	_, err := s.store.CreateItem(s.ctx, b, "one")
	s.Require().NoError(err)

	s.Equal([]models.ListSummary{
		{ID: a, Name: "alpha", ItemCount: 0},
		{ID: b, Name: "beta", ItemCount: 1},
	}, s.summaries())
}

func (s *MongoStoreSuite) TestItemMutationsLeaveOtherItemsAlone() {
	listID, err := s.store.CreateList(s.ctx, "Chores")
	s.Require().NoError(err)
	var items []models.Item
	for _, label := range []string{"sweep", "dust", "mop"} {
		list, err := s.store.CreateItem(s.ctx, listID, label)
		s.Require().NoError(err)
		last, _ := list.LastItem()
		items = append(items, last)
	}
	_, err = s.store.SetCheckedState(s.ctx, listID, items[2].ID, true)
	s.Require().NoError(err)

	list, err := s.store.SetCheckedState(s.ctx, listID, items[1].ID, true)
	s.Require().NoError(err)
	s.Equal([]models.Item{
		{ID: items[0].ID, Label: "sweep", Checked: false},
		{ID: items[1].ID, Label: "dust", Checked: true},
		{ID: items[2].ID, Label: "mop", Checked: true},
	}, list.Items)

	list, err = s.store.SetCheckedState(s.ctx, listID, items[2].ID, false)
	s.Require().NoError(err)
	s.Equal([]models.Item{
		{ID: items[0].ID, Label: "sweep", Checked: false},
		{ID: items[1].ID, Label: "dust", Checked: true},
		{ID: items[2].ID, Label: "mop", Checked: false},
	}, list.Items)

	stored, err := s.store.GetList(s.ctx, listID)
	s.Require().NoError(err)
	s.Equal(list.Items, stored.Items)

	list, err = s.store.DeleteItem(s.ctx, listID, items[1].ID)
	s.Require().NoError(err)
	s.Equal([]models.Item{
		{ID: items[0].ID, Label: "sweep", Checked: false},
		{ID: items[2].ID, Label: "mop", Checked: false},
	}, list.Items)

	_, err = s.store.DeleteItem(s.ctx, listID, items[1].ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	stored, err = s.store.GetList(s.ctx, listID)
	s.Require().NoError(err)
	s.Equal(list.Items, stored.Items)
}

func (s *MongoStoreSuite) TestMissingTargets() {
	listID, _ := s.store.CreateList(s.ctx, "Trip")

	_, err := s.store.CreateItem(s.ctx, id.NewListID(), "x")
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.SetCheckedState(s.ctx, listID, id.NewItemID(), true)
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.DeleteItem(s.ctx, listID, id.NewItemID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MongoStoreSuite) TestMalformedDocuments() {
	s.Run("items not an array breaks the summary projection", func() {
		_, err := s.coll.InsertOne(s.ctx, bson.D{{Key: "name", Value: "broken"}, {Key: "items", Value: "nope"}})
		s.Require().NoError(err)

		it, err := s.store.ListSummaries(s.ctx)
		if err == nil {
			for it.Next(s.ctx) {
			}
			err = it.Err()
			_ = it.Close(s.ctx)
		}
		s.ErrorIs(err, sentinel.ErrInvariantViolation)
	})

	s.Run("list without name is rejected on read", func() {
		res, err := s.coll.InsertOne(s.ctx, bson.D{{Key: "items", Value: bson.A{}}})
		s.Require().NoError(err)
		listID := id.ListID(res.InsertedID.(primitive.ObjectID))

		_, err = s.store.GetList(s.ctx, listID)
		s.ErrorIs(err, sentinel.ErrInvariantViolation)
	})
}

func (s *MongoStoreSuite) TestConcurrentAppends() {
	listID, err := s.store.CreateList(s.ctx, "Busy")
	s.Require().NoError(err)

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.CreateItem(s.ctx, listID, "x")
			s.NoError(err)
		}()
	}
	wg.Wait()

	list, err := s.store.GetList(s.ctx, listID)
	s.Require().NoError(err)
	s.Len(list.Items, writers)
}
