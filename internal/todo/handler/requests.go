package handler

import (
	"strings"

	"todolists/internal/todo/models"
	id "todolists/pkg/domain"
	dErrors "todolists/pkg/domain-errors"
)

// CreateListRequest is the body of POST /api/lists.
type CreateListRequest struct {
	Name string `json:"name"`
}

func (r *CreateListRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func (r *CreateListRequest) Validate() error {
	_, err := models.NormalizeName(r.Name)
	return err
}

// CreateItemRequest is the body of POST /api/lists/{listID}/items.
type CreateItemRequest struct {
	Label string `json:"label"`
}

func (r *CreateItemRequest) Normalize() {
	r.Label = strings.TrimSpace(r.Label)
}

func (r *CreateItemRequest) Validate() error {
	_, err := models.NormalizeLabel(r.Label)
	return err
}

// SetCheckedStateRequest is the body of PUT /api/lists/{listID}/checked_state.
// The item id may come in the body or, for older clients, as the item_id
// query parameter; the body wins when both are set. CheckedState is a pointer
// so that an absent value is not read as false.
type SetCheckedStateRequest struct {
	ItemID       string `json:"item_id,omitempty"`
	CheckedState *bool  `json:"checked_state"`
}

func (r *SetCheckedStateRequest) Normalize() {
	r.ItemID = strings.TrimSpace(r.ItemID)
}

func (r *SetCheckedStateRequest) Validate() error {
	if r.CheckedState == nil {
		return dErrors.New(dErrors.CodeValidation, "checked_state is required")
	}
	return nil
}

// ResolveItemID parses the body's item id, falling back to fromQuery.
func (r *SetCheckedStateRequest) ResolveItemID(fromQuery string) (id.ItemID, error) {
	raw := r.ItemID
	if raw == "" {
		raw = strings.TrimSpace(fromQuery)
	}
	return id.ParseItemID(raw)
}
