package repositories

import (
	"context"
	"fmt"

	"github.com/JethroRendon/Groupify---CC-206-Final-Project/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// GroupRepo is the read surface the task layer needs on groups.
type GroupRepo struct {
	collection *mongo.Collection
}

func NewGroupRepo(collection *mongo.Collection) *GroupRepo {
	return &GroupRepo{collection: collection}
}

func (gr *GroupRepo) Load(ctx context.Context, groupID string) (*models.Group, error) {
	objectID, err := primitive.ObjectIDFromHex(groupID)
	if err != nil {
		return nil, models.NewValidationError("invalid group ID format")
	}

	var group models.Group
	if err := gr.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&group); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.NewNotFoundError("group")
		}
		return nil, fmt.Errorf("failed to fetch group: %v", err)
	}
	return &group, nil
}
