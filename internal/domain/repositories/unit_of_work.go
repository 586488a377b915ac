package repositories

import (
	"context"
)

// UnitOfWork runs a function inside one transaction
type UnitOfWork interface {
	// Do executes fn within a transaction scope; repositories pick the
	// transaction up from ctx.
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
