package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pas-gr3/cinema/internal/domain"
)

type ticketDoc struct {
	ID         uuid.UUID `bson:"_id"`
	MovieTime  time.Time `bson:"movie_time"`
	FinalPrice float64   `bson:"final_price"`
	AccountID  uuid.UUID `bson:"account_id"`
	MovieID    uuid.UUID `bson:"movie_id"`
}

func newTicketDoc(ticket *domain.Ticket) ticketDoc {
	finalPrice, _ := ticket.FinalPrice.Float64()

	return ticketDoc{
		ID:         ticket.ID,
		MovieTime:  ticket.MovieTime,
		FinalPrice: finalPrice,
		AccountID:  ticket.AccountID,
		MovieID:    ticket.MovieID,
	}
}

func (d ticketDoc) toTicket() *domain.Ticket {
	return &domain.Ticket{
		ID:         d.ID,
		MovieTime:  d.MovieTime,
		FinalPrice: decimal.NewFromFloat(d.FinalPrice),
		AccountID:  d.AccountID,
		MovieID:    d.MovieID,
	}
}

type MongoTicketRepository struct {
	store    *Mongo
	accounts domain.AccountRepository
	movies   domain.MovieRepository
}

func NewMongoTicketRepository(store *Mongo, accounts domain.AccountRepository, movies domain.MovieRepository) *MongoTicketRepository {
	return &MongoTicketRepository{
		store:    store,
		accounts: accounts,
		movies:   movies,
	}
}

// Create issues a ticket in one transaction: the account gate, the movie
// lookup, the seat decrement and the ticket insert either all commit or all
// abort, so a failed creation leaves no seat taken and no ticket behind.
func (r *MongoTicketRepository) Create(ctx context.Context, movieTime time.Time, accountID, movieID uuid.UUID, fare domain.FareClass) (*domain.Ticket, error) {
	var ticket *domain.Ticket

	err := r.store.runInTx(ctx, func(sc mongo.SessionContext) error {
		account, err := r.accounts.GetById(sc, accountID)
		if err != nil {
			return err
		}
		if !account.Active {
			return domain.ErrAccountNotActive
		}

		movie, err := r.movies.GetById(sc, movieID)
		if err != nil {
			return err
		}

		if err := r.movies.DecrementSeats(sc, movieID); err != nil {
			return err
		}

		ticket = &domain.Ticket{
			ID:         uuid.New(),
			MovieTime:  movieTime.Truncate(time.Second),
			FinalPrice: movie.BasePrice.Mul(fare.Multiplier()),
			AccountID:  accountID,
			MovieID:    movieID,
		}

		_, err = r.store.tickets().InsertOne(sc, newTicketDoc(ticket))

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating ticket: %w", err)
	}

	return ticket, nil
}

func (r *MongoTicketRepository) GetById(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	var doc ticketDoc

	err := r.store.tickets().FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTicketNotFound
		}

		return nil, fmt.Errorf("reading ticket: %w", err)
	}

	return r.resolve(ctx, doc)
}

func (r *MongoTicketRepository) GetAll(ctx context.Context) ([]*domain.Ticket, error) {
	return r.findAll(ctx, bson.M{})
}

func (r *MongoTicketRepository) GetAllByAccountId(ctx context.Context, accountID uuid.UUID) ([]*domain.Ticket, error) {
	return r.findAll(ctx, bson.M{"account_id": accountID})
}

// Update changes the show time only. Final price and the account and movie
// references are immutable once the ticket is issued.
func (r *MongoTicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	update := bson.M{"$set": bson.M{"movie_time": ticket.MovieTime.Truncate(time.Second)}}

	res, err := r.store.tickets().UpdateOne(ctx, bson.M{"_id": ticket.ID}, update)
	if err != nil {
		return fmt.Errorf("updating ticket: %w", err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("updating ticket: %w", domain.ErrTicketNotFound)
	}

	return nil
}

// Delete removes the ticket and returns its seat in one transaction. A
// missing movie aborts the transaction, which also rolls the ticket removal
// back.
func (r *MongoTicketRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.store.runInTx(ctx, func(sc mongo.SessionContext) error {
		var doc ticketDoc

		err := r.store.tickets().FindOneAndDelete(sc, bson.M{"_id": id}).Decode(&doc)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return domain.ErrTicketNotFound
			}

			return err
		}

		return r.movies.IncrementSeats(sc, doc.MovieID)
	})
	if err != nil {
		return fmt.Errorf("deleting ticket: %w", err)
	}

	return nil
}

// resolve re-joins the referenced account and movie so a ticket read always
// reflects their current identity; a dangling reference fails the read.
func (r *MongoTicketRepository) resolve(ctx context.Context, doc ticketDoc) (*domain.Ticket, error) {
	if _, err := r.accounts.GetById(ctx, doc.AccountID); err != nil {
		return nil, fmt.Errorf("reading ticket %s: %w", doc.ID, err)
	}

	if _, err := r.movies.GetById(ctx, doc.MovieID); err != nil {
		return nil, fmt.Errorf("reading ticket %s: %w", doc.ID, err)
	}

	return doc.toTicket(), nil
}

func (r *MongoTicketRepository) findAll(ctx context.Context, filter bson.M) ([]*domain.Ticket, error) {
	cursor, err := r.store.tickets().Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("reading tickets: %w", err)
	}

	var docs []ticketDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("reading tickets: %w", err)
	}

	tickets := make([]*domain.Ticket, 0, len(docs))
	for _, doc := range docs {
		ticket, err := r.resolve(ctx, doc)
		if err != nil {
			return nil, err
		}

		tickets = append(tickets, ticket)
	}

	return tickets, nil
}
