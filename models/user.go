package models

import "time"

// User documents are keyed by the uid issued by the identity provider.
// The backend only ever reads profile fields and maintains groupIds.
type User struct {
	UID       string    `json:"uid" bson:"_id"`
	FullName  string    `json:"fullName" bson:"fullName"`
	Email     string    `json:"email" bson:"email"`
	GroupIDs  []string  `json:"groupIds" bson:"groupIds"`
	CreatedAt time.Time `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
}
