package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pas-gr3/cinema/internal/domain"
)

type movieDoc struct {
	ID             uuid.UUID `bson:"_id"`
	Title          string    `bson:"title"`
	BasePrice      float64   `bson:"base_price"`
	ScreeningRoom  int       `bson:"screening_room"`
	AvailableSeats int       `bson:"available_seats"`
}

func newMovieDoc(movie *domain.Movie) movieDoc {
	basePrice, _ := movie.BasePrice.Float64()

	return movieDoc{
		ID:             movie.ID,
		Title:          movie.Title,
		BasePrice:      basePrice,
		ScreeningRoom:  movie.ScreeningRoom,
		AvailableSeats: movie.AvailableSeats,
	}
}

func (d movieDoc) toMovie() *domain.Movie {
	return &domain.Movie{
		ID:             d.ID,
		Title:          d.Title,
		BasePrice:      decimal.NewFromFloat(d.BasePrice),
		ScreeningRoom:  d.ScreeningRoom,
		AvailableSeats: d.AvailableSeats,
	}
}

type MongoMovieRepository struct {
	store    *Mongo
	validate *validator.Validate
}

func NewMongoMovieRepository(store *Mongo, validate *validator.Validate) *MongoMovieRepository {
	return &MongoMovieRepository{
		store:    store,
		validate: validate,
	}
}

func (r *MongoMovieRepository) Create(ctx context.Context, title string, basePrice decimal.Decimal, screeningRoom, availableSeats int) (*domain.Movie, error) {
	movie := &domain.Movie{
		ID:             uuid.New(),
		Title:          title,
		BasePrice:      basePrice,
		ScreeningRoom:  screeningRoom,
		AvailableSeats: availableSeats,
	}

	if err := r.validate.Struct(movie); err != nil {
		return nil, fmt.Errorf("creating movie: %w", err)
	}

	if _, err := r.store.movies().InsertOne(ctx, newMovieDoc(movie)); err != nil {
		return nil, fmt.Errorf("creating movie: %w", err)
	}

	return movie, nil
}

func (r *MongoMovieRepository) GetById(ctx context.Context, id uuid.UUID) (*domain.Movie, error) {
	var doc movieDoc

	err := r.store.movies().FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMovieNotFound
		}

		return nil, fmt.Errorf("reading movie: %w", err)
	}

	return doc.toMovie(), nil
}

func (r *MongoMovieRepository) GetAll(ctx context.Context) ([]*domain.Movie, error) {
	cursor, err := r.store.movies().Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("reading movies: %w", err)
	}

	var docs []movieDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("reading movies: %w", err)
	}

	movies := make([]*domain.Movie, 0, len(docs))
	for _, doc := range docs {
		movies = append(movies, doc.toMovie())
	}

	return movies, nil
}

func (r *MongoMovieRepository) Update(ctx context.Context, movie *domain.Movie) error {
	if err := r.validate.Struct(movie); err != nil {
		return fmt.Errorf("updating movie: %w", err)
	}

	err := r.store.movies().FindOneAndReplace(ctx, bson.M{"_id": movie.ID}, newMovieDoc(movie)).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("updating movie: %w", domain.ErrMovieNotFound)
		}

		return fmt.Errorf("updating movie: %w", err)
	}

	return nil
}

// Delete refuses to remove a movie that is still referenced by tickets. The
// reference check and the delete run in one transaction so a ticket created
// between the two cannot be orphaned.
func (r *MongoMovieRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.store.runInTx(ctx, func(sc mongo.SessionContext) error {
		count, err := r.store.tickets().CountDocuments(sc, bson.M{"movie_id": id})
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrMovieInUse
		}

		err = r.store.movies().FindOneAndDelete(sc, bson.M{"_id": id}).Err()
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrMovieNotFound
		}

		return err
	})
	if err != nil {
		return fmt.Errorf("deleting movie: %w", err)
	}

	return nil
}

// DecrementSeats takes one seat atomically, guarded by the availability
// floor. With a transaction-scoped context the change commits or aborts with
// the rest of the ticket transaction; the collection's range validator stays
// as the storage-level backstop.
func (r *MongoMovieRepository) DecrementSeats(ctx context.Context, id uuid.UUID) error {
	filter := bson.M{"_id": id, "available_seats": bson.M{"$gt": 0}}
	update := bson.M{"$inc": bson.M{"available_seats": -1}}

	res, err := r.store.movies().UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("taking seat: %w", err)
	}

	if res.MatchedCount == 0 {
		err := r.store.movies().FindOne(ctx, bson.M{"_id": id}).Err()
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("taking seat: %w", domain.ErrMovieNotFound)
		}
		if err != nil {
			return fmt.Errorf("taking seat: %w", err)
		}

		return fmt.Errorf("taking seat: %w", domain.ErrNoSeatsAvailable)
	}

	return nil
}

func (r *MongoMovieRepository) IncrementSeats(ctx context.Context, id uuid.UUID) error {
	update := bson.M{"$inc": bson.M{"available_seats": 1}}

	res, err := r.store.movies().UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("returning seat: %w", err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("returning seat: %w", domain.ErrMovieNotFound)
	}

	return nil
}
