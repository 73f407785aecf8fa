package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Donation struct {
	ID bson.ObjectID `bson:"_id,omitempty" json:"id"`

	Name   string  `bson:"name" json:"name"`
	Email  string  `bson:"email" json:"email"`
	Amount float64 `bson:"amount" json:"amount"`
	TxHash string  `bson:"txHash,omitempty" json:"txHash,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
