// Package firestore implements the store interfaces on Cloud Firestore.
// Documents live under users/{id} with categories and transactions as
// subcollections, and fx_rates keyed by date at the top level. Decimal
// fields are stored as strings to keep precision exact.
package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dkhomenko/spendbot/internal/models"
)

type userDoc struct {
	UserID       string    `firestore:"userId"`
	BaseCurrency string    `firestore:"baseCurrency"`
	CreatedAt    time.Time `firestore:"createdAt"`
}

type userStore struct {
	Client     *firestore.Client
	Collection *firestore.CollectionRef
}

func NewUserStore(client *firestore.Client) *userStore {
	return &userStore{
		Client:     client,
		Collection: client.Collection("users"),
	}
}

// CreateUser is idempotent; a concurrent create for the same id is not
// an error.
func (us *userStore) CreateUser(ctx context.Context, user *models.User) error {
	doc := userDoc{
		UserID:       user.UserID,
		BaseCurrency: string(user.BaseCurrency),
		CreatedAt:    user.CreatedAt,
	}
	_, err := us.Collection.Doc(user.UserID).Create(ctx, doc)
	if status.Code(err) == codes.AlreadyExists {
		return nil
	}
	return err
}

func (us *userStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	snap, err := us.Collection.Doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}
	return &models.User{
		UserID:       doc.UserID,
		BaseCurrency: models.Currency(doc.BaseCurrency),
		CreatedAt:    doc.CreatedAt,
	}, nil
}

func (us *userStore) UpdateBaseCurrency(ctx context.Context, userID string, currency models.Currency) error {
	_, err := us.Collection.Doc(userID).Update(ctx, []firestore.Update{
		{Path: "baseCurrency", Value: string(currency)},
	})
	return err
}
