package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dkhomenko/spendbot/internal/models"
)

type rateDoc struct {
	RateDate  string    `firestore:"rateDate"`
	PLN       string    `firestore:"pln"`
	UAH       string    `firestore:"uah"`
	USD       string    `firestore:"usd"`
	FetchedAt time.Time `firestore:"fetchedAt"`
}

type rateStore struct {
	Client     *firestore.Client
	Collection *firestore.CollectionRef
}

func NewRateStore(client *firestore.Client) *rateStore {
	return &rateStore{
		Client:     client,
		Collection: client.Collection("fx_rates"),
	}
}

func (rs *rateStore) GetRate(ctx context.Context, date string) (*models.ExchangeRate, error) {
	snap, err := rs.Collection.Doc(date).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var doc rateDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}

	pln, err := decimal.NewFromString(doc.PLN)
	if err != nil {
		return nil, err
	}
	uah, err := decimal.NewFromString(doc.UAH)
	if err != nil {
		return nil, err
	}
	usd, err := decimal.NewFromString(doc.USD)
	if err != nil {
		return nil, err
	}

	return &models.ExchangeRate{
		RateDate:  doc.RateDate,
		PLN:       pln,
		UAH:       uah,
		USD:       usd,
		FetchedAt: doc.FetchedAt,
	}, nil
}

// InsertRate keys the snapshot by its date; Create makes the first
// writer win and later attempts for the same date are silently dropped.
func (rs *rateStore) InsertRate(ctx context.Context, rate *models.ExchangeRate) error {
	doc := rateDoc{
		RateDate:  rate.RateDate,
		PLN:       rate.PLN.StringFixed(6),
		UAH:       rate.UAH.StringFixed(6),
		USD:       rate.USD.StringFixed(6),
		FetchedAt: rate.FetchedAt,
	}
	_, err := rs.Collection.Doc(rate.RateDate).Create(ctx, doc)
	if status.Code(err) == codes.AlreadyExists {
		return nil
	}
	return err
}
