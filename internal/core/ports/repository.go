package ports

import "context"

// ListQuery carries the filter/sort/paginate/field-selection options parsed
// from a request's query string.
type ListQuery struct {
	// Filter maps field names to exact values or operator maps
	// ({"gte": v, "lt": v, ...}).
	Filter map[string]any
	// Sort lists field names; a leading '-' means descending.
	Sort []string
	// Fields restricts the projection; empty means all fields.
	Fields []string
	Page   int64
	Limit  int64
}

// Repository is the generic data-access capability backing the CRUD factory.
// Implementations return domain.ErrNotFound when no document matches.
type Repository[T any] interface {
	Create(ctx context.Context, doc *T) (*T, error)
	FindByID(ctx context.Context, id string) (*T, error)
	Find(ctx context.Context, q ListQuery) ([]T, error)
	UpdateByID(ctx context.Context, id string, updates map[string]any) (*T, error)
	DeleteByID(ctx context.Context, id string) error
	Count(ctx context.Context, filter map[string]any) (int64, error)
}
