package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Movie struct {
	ID             uuid.UUID
	Title          string          `validate:"required,min=1,max=150"`
	BasePrice      decimal.Decimal `validate:"min=0,max=100"`
	ScreeningRoom  int             `validate:"min=1,max=30"`
	AvailableSeats int             `validate:"min=0,max=120"`
}

// MovieRepository owns the authoritative AvailableSeats counter.
// DecrementSeats and IncrementSeats are the only mutation paths for it outside
// a full Update; the ticket repository calls them with a transaction-scoped
// context so seat changes commit or abort together with the ticket write.
type MovieRepository interface {
	Create(ctx context.Context, title string, basePrice decimal.Decimal, screeningRoom, availableSeats int) (*Movie, error)
	GetById(ctx context.Context, id uuid.UUID) (*Movie, error)
	GetAll(ctx context.Context) ([]*Movie, error)
	Update(ctx context.Context, movie *Movie) error
	Delete(ctx context.Context, id uuid.UUID) error
	DecrementSeats(ctx context.Context, id uuid.UUID) error
	IncrementSeats(ctx context.Context, id uuid.UUID) error
}
