package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"todolists/internal/todo/models"
	id "todolists/pkg/domain"
	"todolists/pkg/platform/sentinel"
)

// InMemory is a process-local store with the same contract as Mongo.
// Every operation holds the lock for its whole read-modify-write, which gives
// the same per-list atomicity the document store provides.
type InMemory struct {
	mu    sync.RWMutex
	lists map[id.ListID]*models.List
}

func NewInMemory() *InMemory {
	return &InMemory{lists: make(map[id.ListID]*models.List)}
}

// ListSummaries snapshots the lists at call time, ordered by name.
func (s *InMemory) ListSummaries(_ context.Context) (models.SummaryIterator, error) {
	s.mu.RLock()
	summaries := make([]models.ListSummary, 0, len(s.lists))
	for _, l := range s.lists {
		summaries = append(summaries, models.ListSummary{ID: l.ID, Name: l.Name, ItemCount: len(l.Items)})
	}
	s.mu.RUnlock()

	slices.SortFunc(summaries, func(a, b models.ListSummary) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID.String(), b.ID.String()))
	})
	return NewSliceIterator(summaries), nil
}

func (s *InMemory) CreateList(_ context.Context, name string) (id.ListID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	listID := id.NewListID()
	s.lists[listID] = &models.List{ID: listID, Name: name, Items: []models.Item{}}
	return listID, nil
}

func (s *InMemory) GetList(_ context.Context, listID id.ListID) (*models.List, error) {
	if err := requireListID(listID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lists[listID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneList(l), nil
}

func (s *InMemory) DeleteList(_ context.Context, listID id.ListID) (bool, error) {
	if err := requireListID(listID); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lists[listID]; !ok {
		return false, nil
	}
	delete(s.lists, listID)
	return true, nil
}

func (s *InMemory) CreateItem(_ context.Context, listID id.ListID, label string) (*models.List, error) {
	if err := requireListID(listID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lists[listID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	l.Items = append(l.Items, models.Item{ID: id.NewItemID(), Label: label})
	return cloneList(l), nil
}

func (s *InMemory) SetCheckedState(_ context.Context, listID id.ListID, itemID id.ItemID, checked bool) (*models.List, error) {
	if err := requireIDs(listID, itemID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l, i, err := s.locate(listID, itemID)
	if err != nil {
		return nil, err
	}
	l.Items[i].Checked = checked
	return cloneList(l), nil
}

func (s *InMemory) DeleteItem(_ context.Context, listID id.ListID, itemID id.ItemID) (*models.List, error) {
	if err := requireIDs(listID, itemID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l, i, err := s.locate(listID, itemID)
	if err != nil {
		return nil, err
	}
	l.Items = slices.Delete(l.Items, i, i+1)
	return cloneList(l), nil
}

// locate must be called with the lock held.
func (s *InMemory) locate(listID id.ListID, itemID id.ItemID) (*models.List, int, error) {
	l, ok := s.lists[listID]
	if !ok {
		return nil, 0, sentinel.ErrNotFound
	}
	i := slices.IndexFunc(l.Items, func(it models.Item) bool { return it.ID == itemID })
	if i < 0 {
		return nil, 0, sentinel.ErrNotFound
	}
	return l, i, nil
}

func cloneList(l *models.List) *models.List {
	return &models.List{
		ID:    l.ID,
		Name:  l.Name,
		Items: slices.Clone(l.Items),
	}
}
