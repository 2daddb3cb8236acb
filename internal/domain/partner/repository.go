package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/proxima/backend/internal/domain/shared"
)

// ClientRepository defines the persistence interface for clients
type ClientRepository interface {
	Save(ctx context.Context, client *Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)
	FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*Client], error)
	Delete(ctx context.Context, id uuid.UUID) error
}
