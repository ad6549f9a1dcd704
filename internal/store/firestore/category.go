package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/dkhomenko/spendbot/internal/errs"
	"github.com/dkhomenko/spendbot/internal/models"
)

type categoryDoc struct {
	ID        string    `firestore:"id"`
	UserID    string    `firestore:"userId"`
	Name      string    `firestore:"name"`
	Kind      string    `firestore:"kind"`
	CreatedAt time.Time `firestore:"createdAt"`
}

type categoryStore struct {
	Client *firestore.Client
}

func NewCategoryStore(client *firestore.Client) *categoryStore {
	return &categoryStore{Client: client}
}

func (cs *categoryStore) categories(userID string) *firestore.CollectionRef {
	return cs.Client.Collection("users").Doc(userID).Collection("categories")
}

// InsertCategory enforces (name, kind) uniqueness with a lookup before
// the create. Firestore has no unique constraints, so a racing pair of
// inserts can both land; the ingestion path tolerates that.
func (cs *categoryStore) InsertCategory(ctx context.Context, category *models.Category) error {
	existing, err := cs.GetCategoryByName(ctx, category.UserID, category.Name, category.Kind)
	if err != nil {
		return err
	}
	if existing != nil {
		return errs.NewAlreadyExistsError("category already exists")
	}

	doc := categoryDoc{
		ID:        category.ID,
		UserID:    category.UserID,
		Name:      category.Name,
		Kind:      string(category.Kind),
		CreatedAt: category.CreatedAt,
	}
	_, err = cs.categories(category.UserID).Doc(category.ID).Create(ctx, doc)
	return err
}

func (cs *categoryStore) GetCategoryByName(ctx context.Context, userID, name string, kind models.CategoryKind) (*models.Category, error) {
	iter := cs.categories(userID).
		Where("name", "==", name).
		Where("kind", "==", string(kind)).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return categoryFromSnap(snap)
}

func (cs *categoryStore) ListCategories(ctx context.Context, userID string) ([]models.Category, error) {
	iter := cs.categories(userID).
		OrderBy("name", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var categories []models.Category
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		category, err := categoryFromSnap(snap)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *category)
	}
	return categories, nil
}

func (cs *categoryStore) DeleteCategoriesByName(ctx context.Context, userID, name string) ([]string, error) {
	iter := cs.categories(userID).
		Where("name", "==", name).
		Documents(ctx)
	defer iter.Stop()

	writer := cs.Client.BulkWriter(ctx)
	var ids []string
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		if _, err := writer.Delete(snap.Ref); err != nil {
			return nil, err
		}
		ids = append(ids, snap.Ref.ID)
	}
	writer.End()
	return ids, nil
}

func categoryFromSnap(snap *firestore.DocumentSnapshot) (*models.Category, error) {
	var doc categoryDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}
	return &models.Category{
		ID:        doc.ID,
		UserID:    doc.UserID,
		Name:      doc.Name,
		Kind:      models.CategoryKind(doc.Kind),
		CreatedAt: doc.CreatedAt,
	}, nil
}
