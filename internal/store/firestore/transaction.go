package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dkhomenko/spendbot/internal/models"
)

type transactionDoc struct {
	ID           string    `firestore:"id"`
	UserID       string    `firestore:"userId"`
	CategoryID   string    `firestore:"categoryId"`
	Sign         int       `firestore:"sign"`
	Amount       string    `firestore:"amount"`
	Currency     string    `firestore:"currency"`
	AmountUSD    string    `firestore:"amountUsd"`
	Note         *string   `firestore:"note"`
	TxnAt        time.Time `firestore:"txnAt"`
	RateDate     string    `firestore:"rateDate"`
	IsRateApprox bool      `firestore:"isRateApprox"`
	CreatedAt    time.Time `firestore:"createdAt"`
}

type transactionStore struct {
	Client *firestore.Client
}

func NewTransactionStore(client *firestore.Client) *transactionStore {
	return &transactionStore{Client: client}
}

func (ts *transactionStore) transactions(userID string) *firestore.CollectionRef {
	return ts.Client.Collection("users").Doc(userID).Collection("transactions")
}

func (ts *transactionStore) InsertTransaction(ctx context.Context, txn *models.Transaction) error {
	_, err := ts.transactions(txn.UserID).Doc(txn.ID).Create(ctx, toTransactionDoc(txn))
	return err
}

func (ts *transactionStore) GetTransaction(ctx context.Context, id, userID string) (*models.Transaction, error) {
	snap, err := ts.transactions(userID).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return transactionFromSnap(snap)
}

func (ts *transactionStore) UpdateTransaction(ctx context.Context, txn *models.Transaction) error {
	_, err := ts.transactions(txn.UserID).Doc(txn.ID).Set(ctx, toTransactionDoc(txn))
	return err
}

// DeleteTransaction reports how many records went away so callers can
// tell a real delete from a miss on a foreign-owned id.
func (ts *transactionStore) DeleteTransaction(ctx context.Context, id, userID string) (int64, error) {
	ref := ts.transactions(userID).Doc(id)
	_, err := ref.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if _, err := ref.Delete(ctx); err != nil {
		return 0, err
	}
	return 1, nil
}

func (ts *transactionStore) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, int64, error) {
	total, err := ts.countTransactions(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	iter := ts.transactions(userID).
		OrderBy("txnAt", firestore.Desc).
		Offset(offset).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var txns []models.Transaction
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, err
		}
		txn, err := transactionFromSnap(snap)
		if err != nil {
			return nil, 0, err
		}
		txns = append(txns, *txn)
	}
	return txns, total, nil
}

func (ts *transactionStore) QueryTransactions(ctx context.Context, userID string, from, to time.Time, handle func(*models.Transaction) error) error {
	iter := ts.transactions(userID).
		Where("txnAt", ">=", from).
		Where("txnAt", "<=", to).
		OrderBy("txnAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return err
		}
		txn, err := transactionFromSnap(snap)
		if err != nil {
			return err
		}
		if err := handle(txn); err != nil {
			return err
		}
	}
}

func (ts *transactionStore) DeleteTransactionsByCategory(ctx context.Context, userID, categoryID string) (int64, error) {
	iter := ts.transactions(userID).
		Where("categoryId", "==", categoryID).
		Documents(ctx)
	defer iter.Stop()

	writer := ts.Client.BulkWriter(ctx)
	var affected int64
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, err
		}
		if _, err := writer.Delete(snap.Ref); err != nil {
			return 0, err
		}
		affected++
	}
	writer.End()
	return affected, nil
}

// countTransactions walks a keys-only projection; pagination totals stay
// cheap without an aggregation query.
func (ts *transactionStore) countTransactions(ctx context.Context, userID string) (int64, error) {
	iter := ts.transactions(userID).Select().Documents(ctx)
	defer iter.Stop()

	var total int64
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			return total, nil
		}
		if err != nil {
			return 0, err
		}
		total++
	}
}

func toTransactionDoc(txn *models.Transaction) transactionDoc {
	return transactionDoc{
		ID:           txn.ID,
		UserID:       txn.UserID,
		CategoryID:   txn.CategoryID,
		Sign:         txn.Sign,
		Amount:       txn.Amount.StringFixed(2),
		Currency:     string(txn.Currency),
		AmountUSD:    txn.AmountUSD.StringFixed(2),
		Note:         txn.Note,
		TxnAt:        txn.TxnAt,
		RateDate:     txn.RateDate,
		IsRateApprox: txn.IsRateApprox,
		CreatedAt:    txn.CreatedAt,
	}
}

func transactionFromSnap(snap *firestore.DocumentSnapshot) (*models.Transaction, error) {
	var doc transactionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(doc.Amount)
	if err != nil {
		return nil, err
	}
	amountUSD, err := decimal.NewFromString(doc.AmountUSD)
	if err != nil {
		return nil, err
	}

	return &models.Transaction{
		ID:           doc.ID,
		UserID:       doc.UserID,
		CategoryID:   doc.CategoryID,
		Sign:         doc.Sign,
		Amount:       amount,
		Currency:     models.Currency(doc.Currency),
		AmountUSD:    amountUSD,
		Note:         doc.Note,
		TxnAt:        doc.TxnAt,
		RateDate:     doc.RateDate,
		IsRateApprox: doc.IsRateApprox,
		CreatedAt:    doc.CreatedAt,
	}, nil
}
