package models

import (
	"time"
)

type CategoryKind string

const (
	KindIncome  CategoryKind = "income"
	KindExpense CategoryKind = "expense"
)

// KindForSign maps a transaction sign to the category kind it books
// against: +1 to income categories, -1 to expense categories.
func KindForSign(sign int) CategoryKind {
	if sign == 1 {
		return KindIncome
	}
	return KindExpense
}

func ParseCategoryKind(kind string) (CategoryKind, bool) {
	switch CategoryKind(kind) {
	case KindIncome:
		return KindIncome, true
	case KindExpense:
		return KindExpense, true
	}
	return "", false
}

// Category names are lowercased and unique per (user, name, kind).
type Category struct {
	ID        string       `firestore:"id" json:"id"`
	UserID    string       `firestore:"userId" json:"userId"`
	Name      string       `firestore:"name" json:"name"`
	Kind      CategoryKind `firestore:"kind" json:"kind"`
	CreatedAt time.Time    `firestore:"createdAt" json:"createdAt"`
}
