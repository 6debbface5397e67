package main

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered account. Password holds the bcrypt hash and is never
// serialized to clients.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username  string             `bson:"username" json:"username"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Api is an API definition registered by a user. Managed by the apis
// blueprint; only the collection and its user_id index live here.
type Api struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Name      string             `bson:"name" json:"name"`
	BaseURL   string             `bson:"base_url" json:"base_url"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// ApiKey is an issued key bound to a user. The key value is unique across
// the collection.
type ApiKey struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Key       string             `bson:"key" json:"key"`
	Name      string             `bson:"name" json:"name"`
	Active    bool               `bson:"active" json:"active"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// LogEntry records one proxied execution, newest-first by timestamp.
type LogEntry struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	ApiID      primitive.ObjectID `bson:"api_id" json:"api_id"`
	StatusCode int                `bson:"status_code" json:"status_code"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
}
