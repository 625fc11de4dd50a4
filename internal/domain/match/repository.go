package match

import "context"

// Repository exposes read access to match metadata.
type Repository interface {
	GetByID(ctx context.Context, id string) (Match, bool, error)
	List(ctx context.Context) ([]Match, error)
}
