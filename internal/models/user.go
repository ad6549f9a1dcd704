package models

import (
	"time"
)

type User struct {
	UserID       string    `firestore:"userId" json:"userId"`
	BaseCurrency Currency  `firestore:"baseCurrency" json:"baseCurrency"`
	CreatedAt    time.Time `firestore:"createdAt" json:"createdAt"`
}
