package integration_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/pas-gr3/cinema/internal/domain"
	"github.com/pas-gr3/cinema/internal/repository"
	appvalidator "github.com/pas-gr3/cinema/internal/validator"
)

const dbName = "cinema_test"

type BaseSuite struct {
	suite.Suite
	dbContainer *MongoContainer
	store       *repository.Mongo

	accounts domain.AccountRepository
	movies   domain.MovieRepository
	tickets  domain.TicketRepository
}

func (s *BaseSuite) SetupSuite() {
	if testing.Short() {
		s.T().Skip("skipping integration suite in short mode")
	}

	ctx := context.Background()

	dbContainer, err := getDbContainer(ctx)
	s.Require().NoError(err, "failed to start container")
	s.dbContainer = dbContainer

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	store, err := repository.Connect(ctx, repository.Config{
		URI:            dbContainer.ConnectionString,
		Database:       dbName,
		ConnectTimeout: 30 * time.Second,
	}, logger)
	s.Require().NoError(err, "cannot connect to store")
	s.store = store

	s.Require().NoError(store.EnsureSchema(ctx), "cannot install schema")

	validate := appvalidator.New()

	accountRepo := repository.NewMongoAccountRepository(store, validate)
	movieRepo := repository.NewMongoMovieRepository(store, validate)

	s.accounts = accountRepo
	s.movies = movieRepo
	s.tickets = repository.NewMongoTicketRepository(store, accountRepo, movieRepo)
}

// SetupTest empties the collections, keeping the validators and the unique
// login index in place.
func (s *BaseSuite) SetupTest() {
	ctx := context.Background()

	for _, name := range []string{"tickets", "movies", "accounts"} {
		_, err := s.store.Database().Collection(name).DeleteMany(ctx, bson.M{})
		s.Require().NoError(err)
	}
}

func (s *BaseSuite) TearDownSuite() {
	ctx := context.Background()

	if s.store != nil {
		if err := s.store.Close(ctx); err != nil {
			s.T().Logf("failed to close store: %s", err)
		}
	}

	if s.dbContainer != nil {
		if err := testcontainers.TerminateContainer(s.dbContainer.Container); err != nil {
			s.T().Logf("failed to terminate container: %s", err)
		}
	}
}
