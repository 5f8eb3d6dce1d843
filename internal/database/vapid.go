package database

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const vapidDocID = "vapid"

// VapidKeyPair is the deployment's push-delivery key pair. The stored copy
// is the source of truth; callers cache it in memory for the process
// lifetime as an optimization only.
type VapidKeyPair struct {
	ID         string `bson:"_id"`
	PublicKey  string `bson:"public_key"`
	PrivateKey string `bson:"private_key"`
}

// VapidLoadOrCreate returns the stored key pair, generating and persisting
// one on first run.
func (db Database) VapidLoadOrCreate(ctx context.Context, generate func() (privateKey, publicKey string, err error)) (VapidKeyPair, error) {
	var kp VapidKeyPair
	err := db.Collection(CollectionKeys).FindOne(ctx, bson.M{"_id": vapidDocID}).Decode(&kp)
	if err == nil {
		return kp, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return kp, errors.Wrap(err, "error reading VAPID key pair")
	}

	privateKey, publicKey, err := generate()
	if err != nil {
		return kp, errors.Wrap(err, "error generating VAPID key pair")
	}
	kp = VapidKeyPair{ID: vapidDocID, PublicKey: publicKey, PrivateKey: privateKey}
	if _, err = db.Collection(CollectionKeys).InsertOne(ctx, kp); err != nil {
		// Lost a first-run race with another instance: read theirs back.
		if mongo.IsDuplicateKeyError(err) {
			if err := db.Collection(CollectionKeys).FindOne(ctx, bson.M{"_id": vapidDocID}).Decode(&kp); err == nil {
				return kp, nil
			}
		}
		return kp, errors.Wrap(err, "error storing VAPID key pair")
	}
	return kp, nil
}
