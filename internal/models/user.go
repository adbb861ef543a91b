// internal/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is created on the first authenticated request for a subject.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID     string             `bson:"userId" json:"userId"`
	Email      string             `bson:"email,omitempty" json:"email,omitempty"`
	Name       string             `bson:"name,omitempty" json:"name,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
	LastSeenAt time.Time          `bson:"lastSeenAt" json:"lastSeenAt"`
}

// Identity is what the identity provider tells us about the caller.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// IsGuest reports whether the request carried no verified subject.
func (i Identity) IsGuest() bool {
	return i.Subject == ""
}
