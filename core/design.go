package core

import (
	"context"
	"time"
)

type (
	// Design is the persisted form of a document: the packed archive bytes
	// plus the metadata shown in list views.
	Design struct {
		ID        string    `json:"id"`
		UserID    string    `json:"-"` // Not exposed in JSON responses, used internally.
		Name      string    `json:"name"`
		Thumbnail string    `json:"thumbnail,omitempty"`
		Data      []byte    `json:"data,omitempty"` // The packed archive, not included in list views.
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// SharedDesign is an anonymously shared archive, addressable by id alone.
	SharedDesign struct {
		Data []byte
	}

	// DesignStore defines the persistence layer for user-owned designs.
	// All operations are scoped to a specific user.
	DesignStore interface {
		// List returns metadata for all designs owned by a user. The returned
		// Design objects should not contain the Data field to keep the
		// response light.
		List(ctx context.Context, userID string) ([]*Design, error)

		// Get returns a single design by its ID, ensuring it belongs to the user.
		Get(ctx context.Context, userID, id string) (*Design, error)

		// Save creates or updates a design for a user.
		Save(ctx context.Context, design *Design) error

		// Delete removes a design, ensuring it belongs to the user.
		Delete(ctx context.Context, userID, id string) error
	}

	// ShareStore defines anonymous one-shot sharing of packed archives.
	ShareStore interface {
		// FindID retrieves a shared archive by its ID.
		FindID(ctx context.Context, id string) (*SharedDesign, error)

		// Create stores a new shared archive and returns its generated ID.
		Create(ctx context.Context, shared *SharedDesign) (string, error)
	}
)
