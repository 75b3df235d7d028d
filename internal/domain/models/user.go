package models

import "time"

// User is a registered dashboard account. ID doubles as the public user
// identifier handed out at login.
type User struct {
	ID           string    `bson:"_id" json:"userId"`
	Email        string    `bson:"email" json:"email"`
	Name         string    `bson:"name" json:"name"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
}
