package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Group struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description" bson:"description"`
	Subject     string             `json:"subject" bson:"subject"`
	CreatedBy   string             `json:"createdBy" bson:"createdBy"`
	Members     []string           `json:"members" bson:"members"`
	AccessCode  string             `json:"accessCode" bson:"accessCode"`
	IsActive    bool               `json:"isActive" bson:"isActive"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}

// HasMember reports whether uid is on the group roster.
func (g *Group) HasMember(uid string) bool {
	for _, m := range g.Members {
		if m == uid {
			return true
		}
	}
	return false
}
