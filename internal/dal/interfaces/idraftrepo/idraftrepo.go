package idraftrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/orders/internal/service/models/draft"
)

// IDraftRepository is an interface for the draft order store.
type IDraftRepository interface {
	// Upsert creates the draft or fully replaces the stored one.
	Upsert(ctx context.Context, d draft.Draft) error
	// List returns drafts, most recently updated first.
	List(ctx context.Context, limit int) ([]draft.Draft, error)
	// Delete removes a draft. Deleting a missing draft is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
	// Prune removes all but the keep most recently updated drafts.
	Prune(ctx context.Context, keep int) (int64, error)
}
