package deposit

import "context"

// Store is the persistence contract for deposits. Implementations must
// support safe concurrent read/update keyed by deposit id.
type Store interface {
	// GetById returns (nil, nil) when no deposit with the id exists.
	GetById(ctx context.Context, id string) (*Deposit, error)
	// GetByStatus returns all deposits with the given status bound to the
	// given destination chain.
	GetByStatus(ctx context.Context, status DepositStatus, chainId uint64) ([]*Deposit, error)
	Create(ctx context.Context, d *Deposit) error
	Update(ctx context.Context, d *Deposit) error
}
