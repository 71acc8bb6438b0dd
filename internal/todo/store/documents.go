package store

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"todolists/internal/todo/models"
	id "todolists/pkg/domain"
	"todolists/pkg/platform/sentinel"
)

// Field names of the persisted list document:
//
//	{ _id: ObjectId, name: string, items: [ { _id: string, label: string, checked: bool } ] }
const (
	fieldID        = "_id"
	fieldName      = "name"
	fieldItems     = "items"
	fieldLabel     = "label"
	fieldChecked   = "checked"
	fieldItemCount = "item_count"
)

// listDocument is the decode target for a stored list. Pointer fields let us
// tell a missing field apart from a zero value.
type listDocument struct {
	ID    *primitive.ObjectID `bson:"_id"`
	Name  *string             `bson:"name"`
	Items *[]itemDocument     `bson:"items"`
}

type itemDocument struct {
	ID      *string `bson:"_id"`
	Label   *string `bson:"label"`
	Checked *bool   `bson:"checked"`
}

type summaryDocument struct {
	ID        *primitive.ObjectID `bson:"_id"`
	Name      *string             `bson:"name"`
	ItemCount *int                `bson:"item_count"`
}

func invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel.ErrInvariantViolation, fmt.Sprintf(format, args...))
}

func newItemDocument(itemID id.ItemID, label string) bson.D {
	return bson.D{
		{Key: fieldID, Value: itemID.String()},
		{Key: fieldLabel, Value: label},
		{Key: fieldChecked, Value: false},
	}
}

func decodeList(raw bson.Raw) (*models.List, error) {
	var doc listDocument
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, invariantf("decode list document: %v", err)
	}
	if doc.ID == nil || doc.ID.IsZero() {
		return nil, invariantf("list document has no _id")
	}
	if doc.Name == nil {
		return nil, invariantf("list %s has no name", doc.ID.Hex())
	}
	if doc.Items == nil {
		return nil, invariantf("list %s has no items array", doc.ID.Hex())
	}

	list := &models.List{
		ID:    id.ListID(*doc.ID),
		Name:  *doc.Name,
		Items: make([]models.Item, 0, len(*doc.Items)),
	}
	for i, it := range *doc.Items {
		item, err := it.toModel()
		if err != nil {
			return nil, invariantf("list %s item %d: %v", doc.ID.Hex(), i, err)
		}
		list.Items = append(list.Items, item)
	}
	return list, nil
}

func (d itemDocument) toModel() (models.Item, error) {
	if d.ID == nil {
		return models.Item{}, fmt.Errorf("missing _id")
	}
	itemID, err := id.ParseItemID(*d.ID)
	if err != nil {
		return models.Item{}, fmt.Errorf("malformed _id %q", *d.ID)
	}
	if d.Label == nil {
		return models.Item{}, fmt.Errorf("missing label")
	}
	if d.Checked == nil {
		return models.Item{}, fmt.Errorf("missing checked")
	}
	return models.Item{ID: itemID, Label: *d.Label, Checked: *d.Checked}, nil
}

func decodeSummary(raw bson.Raw) (models.ListSummary, error) {
	var doc summaryDocument
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return models.ListSummary{}, invariantf("decode list summary: %v", err)
	}
	if doc.ID == nil || doc.ID.IsZero() {
		return models.ListSummary{}, invariantf("list summary has no _id")
	}
	if doc.Name == nil {
		return models.ListSummary{}, invariantf("list %s has no name", doc.ID.Hex())
	}
	if doc.ItemCount == nil || *doc.ItemCount < 0 {
		return models.ListSummary{}, invariantf("list %s has no item_count", doc.ID.Hex())
	}
	return models.ListSummary{
		ID:        id.ListID(*doc.ID),
		Name:      *doc.Name,
		ItemCount: *doc.ItemCount,
	}, nil
}
