package database

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"yardwatch/internal/model"
)

// All saved searches live in one document that is read and replaced
// wholesale. Every mutation is read-modify-write over the full list; if
// two writers interleave, the later full write wins and the earlier change
// is lost. Accepted: one sweep per day plus a trickle of user writes makes
// collisions rare, and the engine is written against exactly these
// semantics.
const savedSearchesDocID = "saved-searches"

type savedSearchesDoc struct {
	ID      string              `bson:"_id"`
	Records []model.SavedSearch `bson:"records"`
}

// SearchesReadAll returns every saved search. A missing document is an
// empty collection, not an error.
func (db Database) SearchesReadAll(ctx context.Context) ([]model.SavedSearch, error) {
	var doc savedSearchesDoc
	err := db.Collection(CollectionSavedSearches).FindOne(ctx, bson.M{"_id": savedSearchesDocID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []model.SavedSearch{}, nil
		}
		return nil, errors.Wrap(err, "error reading saved searches document")
	}
	if doc.Records == nil {
		doc.Records = []model.SavedSearch{}
	}
	return doc.Records, nil
}

// SearchesWriteAll replaces the full saved-search list.
func (db Database) SearchesWriteAll(ctx context.Context, records []model.SavedSearch) error {
	doc := savedSearchesDoc{ID: savedSearchesDocID, Records: records}
	_, err := db.Collection(CollectionSavedSearches).ReplaceOne(
		ctx,
		bson.M{"_id": savedSearchesDocID},
		doc,
		options.Replace().SetUpsert(true),
	)
	return errors.Wrapf(err, "error writing saved searches document with %d record(s)", len(records))
}
