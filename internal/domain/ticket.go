package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FareClass is a pricing category applied to the movie's base price when a
// ticket is issued.
type FareClass string

const (
	FareNormal  FareClass = "normal"
	FareReduced FareClass = "reduced"
)

var reducedFareMultiplier = decimal.NewFromFloat(0.75)

// Multiplier returns the base-price factor for the fare class. Unrecognized
// classes charge full price instead of failing.
func (f FareClass) Multiplier() decimal.Decimal {
	if f == FareReduced {
		return reducedFareMultiplier
	}

	return decimal.NewFromInt(1)
}

type Ticket struct {
	ID         uuid.UUID
	MovieTime  time.Time
	FinalPrice decimal.Decimal
	AccountID  uuid.UUID
	MovieID    uuid.UUID
}

// TicketRepository creates and destroys reservations. Create and Delete each
// run as one multi-document transaction together with the movie's seat
// counter; FinalPrice is snapshotted at creation and never changes afterwards.
type TicketRepository interface {
	Create(ctx context.Context, movieTime time.Time, accountID, movieID uuid.UUID, fare FareClass) (*Ticket, error)
	GetById(ctx context.Context, id uuid.UUID) (*Ticket, error)
	GetAll(ctx context.Context) ([]*Ticket, error)
	GetAllByAccountId(ctx context.Context, accountID uuid.UUID) ([]*Ticket, error)
	Update(ctx context.Context, ticket *Ticket) error
	Delete(ctx context.Context, id uuid.UUID) error
}
