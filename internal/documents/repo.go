package documents

import "context"

// Repo defines persistence operations for documents. Every query is
// scoped by owner; implementations must never return or affect another
// owner's row.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByOwnerAndID(ctx context.Context, ownerID, id string) (Document, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Document, error)
	Delete(ctx context.Context, ownerID, id string) error
}
