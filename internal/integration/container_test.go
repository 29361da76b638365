package integration_test

import (
	"context"
	"fmt"

	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

const (
	dbImageName = "mongo:7"
	replicaSet  = "rs0"
)

type MongoContainer struct {
	Container        *mongodb.MongoDBContainer
	ConnectionString string
}

// getDbContainer starts a single-node replica set; transactions need one even
// with a single member.
func getDbContainer(ctx context.Context) (*MongoContainer, error) {
	container, err := mongodb.Run(ctx, dbImageName, mongodb.WithReplicaSet(replicaSet))
	if err != nil {
		return nil, fmt.Errorf("failed to start DB container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	return &MongoContainer{
		Container:        container,
		ConnectionString: connStr,
	}, nil
}
