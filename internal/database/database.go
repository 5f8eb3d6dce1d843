package database

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	Name                    = "yardwatch_db"
	CollectionSavedSearches = "saved_searches"
	CollectionKeys          = "keys"
)

type Database struct {
	*mongo.Database
}

func ConnectDB(ctx context.Context, dbURI string) (*mongo.Client, error) {
	return mongo.Connect(ctx, options.Client().ApplyURI(dbURI))
}
