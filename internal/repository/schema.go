package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection-level $jsonSchema validators back up the store-side validation:
// even if a caller bypasses the repositories, the engine rejects documents
// that break the field constraints. The available_seats floor is what turns
// an over-booking attempt inside a transaction into a hard write failure.

const errCodeNamespaceExists = 48

var uuidBinary = bson.M{"bsonType": "binData"}

var accountSchema = bson.M{
	"bsonType": "object",
	"required": bson.A{"_id", "login", "password", "active", "role"},
	"properties": bson.M{
		"_id": uuidBinary,
		"login": bson.M{
			"bsonType":  "string",
			"minLength": 8,
			"maxLength": 20,
			"pattern":   `^\S*$`,
		},
		"password": bson.M{
			"bsonType":  "string",
			"minLength": 8,
			"maxLength": 200,
			"pattern":   `^\S*$`,
		},
		"active": bson.M{"bsonType": "bool"},
		"role":   bson.M{"enum": bson.A{"client", "admin", "staff"}},
	},
}

var movieSchema = bson.M{
	"bsonType": "object",
	"required": bson.A{"_id", "title", "base_price", "screening_room", "available_seats"},
	"properties": bson.M{
		"_id": uuidBinary,
		"title": bson.M{
			"bsonType":  "string",
			"minLength": 1,
			"maxLength": 150,
		},
		"base_price": bson.M{
			"bsonType": "double",
			"minimum":  0,
			"maximum":  100,
		},
		"screening_room": bson.M{
			"bsonType": bson.A{"int", "long"},
			"minimum":  1,
			"maximum":  30,
		},
		"available_seats": bson.M{
			"bsonType": bson.A{"int", "long"},
			"minimum":  0,
			"maximum":  120,
		},
	},
}

var ticketSchema = bson.M{
	"bsonType": "object",
	"required": bson.A{"_id", "movie_time", "final_price", "account_id", "movie_id"},
	"properties": bson.M{
		"_id":        uuidBinary,
		"movie_time": bson.M{"bsonType": "date"},
		"final_price": bson.M{
			"bsonType": "double",
			"minimum":  0,
		},
		"account_id": uuidBinary,
		"movie_id":   uuidBinary,
	},
}

// EnsureSchema creates the three collections with their validators and the
// unique login index. Safe to call on an already initialized database.
func (m *Mongo) EnsureSchema(ctx context.Context) error {
	collections := []struct {
		name   string
		schema bson.M
	}{
		{accountCollection, accountSchema},
		{movieCollection, movieSchema},
		{ticketCollection, ticketSchema},
	}

	for _, c := range collections {
		opts := options.CreateCollection().SetValidator(bson.M{"$jsonSchema": c.schema})

		err := m.db.CreateCollection(ctx, c.name, opts)
		if err != nil {
			var cmdErr mongo.CommandError
			if errors.As(err, &cmdErr) && cmdErr.Code == errCodeNamespaceExists {
				continue
			}

			return fmt.Errorf("creating collection %q: %w", c.name, err)
		}

		m.logger.Info("created collection", "name", c.name)
	}

	// One unique index over the whole account collection keeps login
	// uniqueness a single global invariant across all three roles.
	_, err := m.accounts().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "login", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("creating login index: %w", err)
	}

	return nil
}
