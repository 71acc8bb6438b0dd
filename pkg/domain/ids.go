package domain

import (
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	dErrors "todolists/pkg/domain-errors"
)

// maxIDLength bounds raw identifier input before any parsing is attempted.
// The longest accepted form is a braced or urn-prefixed UUID (45 characters).
const maxIDLength = 64

// ListID identifies a to-do list. It is the store-generated ObjectID of the
// list document; its text form is the 24-character hex encoding.
type ListID primitive.ObjectID

// ItemID identifies an item within its owning list. Item ids are random UUIDs
// generated when the item is created.
type ItemID uuid.UUID

// NewListID returns a fresh ListID.
func NewListID() ListID {
	return ListID(primitive.NewObjectID())
}

// ParseListID parses the hex form of a list id. Empty, malformed and all-zero
// ids are rejected with CodeInvalidInput.
func ParseListID(s string) (ListID, error) {
	if s == "" {
		return ListID{}, dErrors.New(dErrors.CodeInvalidInput, "list id is required")
	}
	if len(s) > maxIDLength {
		return ListID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid list id")
	}
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return ListID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid list id")
	}
	if oid.IsZero() {
		return ListID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid list id")
	}
	return ListID(oid), nil
}

// ObjectID returns the underlying store identifier.
func (id ListID) ObjectID() primitive.ObjectID {
	return primitive.ObjectID(id)
}

func (id ListID) String() string {
	return primitive.ObjectID(id).Hex()
}

// IsNil reports whether id is the zero value.
func (id ListID) IsNil() bool {
	return primitive.ObjectID(id).IsZero()
}

func (id ListID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ListID) UnmarshalText(b []byte) error {
	parsed, err := ParseListID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// NewItemID returns a random ItemID.
func NewItemID() ItemID {
	return ItemID(uuid.New())
}

// ParseItemID parses an item id. Empty, malformed and nil UUIDs are rejected
// with CodeInvalidInput.
func ParseItemID(s string) (ItemID, error) {
	if strings.TrimSpace(s) == "" {
		return ItemID{}, dErrors.New(dErrors.CodeInvalidInput, "item id is required")
	}
	if len(s) > maxIDLength {
		return ItemID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid item id")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return ItemID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid item id")
	}
	if u == uuid.Nil {
		return ItemID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid item id")
	}
	return ItemID(u), nil
}

func (id ItemID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether id is the zero value.
func (id ItemID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

func (id ItemID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ItemID) UnmarshalText(b []byte) error {
	parsed, err := ParseItemID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
