package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/pas-gr3/cinema/internal/domain"
)

const (
	accountCollection = "accounts"
	movieCollection   = "movies"
	ticketCollection  = "tickets"
)

type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// Mongo owns the client and database handles and hands out typed collection
// access and transaction scopes to the repositories. It holds no business
// rules.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	logger *slog.Logger
}

func Connect(ctx context.Context, cfg Config, logger *slog.Logger) (*Mongo, error) {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetReadConcern(readconcern.Majority()).
		SetWriteConcern(writeconcern.Majority()).
		SetReadPreference(readpref.Primary()).
		SetRegistry(newRegistry())

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConnection, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: %v", domain.ErrConnection, err)
	}

	logger.Info("connected to document store", "database", cfg.Database)

	return &Mongo{
		client: client,
		db:     client.Database(cfg.Database),
		logger: logger,
	}, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// Database exposes the namespace handle for callers that manage collection
// contents directly, such as test fixtures.
func (m *Mongo) Database() *mongo.Database {
	return m.db
}

func (m *Mongo) accounts() *mongo.Collection {
	return m.db.Collection(accountCollection)
}

func (m *Mongo) movies() *mongo.Collection {
	return m.db.Collection(movieCollection)
}

func (m *Mongo) tickets() *mongo.Collection {
	return m.db.Collection(ticketCollection)
}

// runInTx runs fn inside one transaction with majority read/write concern.
// Commit on nil, abort on error; the session is ended on every exit path,
// which also aborts an in-flight transaction if fn panics. Failed
// transactions are never retried here.
func (m *Mongo) runInTx(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Majority()).
		SetWriteConcern(writeconcern.Majority()).
		SetReadPreference(readpref.Primary())

	return mongo.WithSession(ctx, session, func(sc mongo.SessionContext) error {
		if err := session.StartTransaction(txnOpts); err != nil {
			return fmt.Errorf("starting transaction: %w", err)
		}

		err := fn(sc)
		if err == nil {
			return session.CommitTransaction(sc)
		}

		abortErr := session.AbortTransaction(sc)
		if abortErr != nil {
			return errors.Join(err, abortErr)
		}

		return err
	})
}
