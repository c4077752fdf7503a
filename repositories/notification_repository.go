package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/JethroRendon/Groupify---CC-206-Final-Project/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type NotificationRepo struct {
	collection *mongo.Collection
}

func NewNotificationRepo(collection *mongo.Collection) *NotificationRepo {
	return &NotificationRepo{collection: collection}
}

func (nr *NotificationRepo) Insert(ctx context.Context, notification *models.Notification) error {
	if notification.ID.IsZero() {
		notification.ID = primitive.NewObjectID()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}

	if _, err := nr.collection.InsertOne(ctx, notification); err != nil {
		return fmt.Errorf("failed to create notification: %v", err)
	}
	return nil
}

func (nr *NotificationRepo) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	cursor, err := nr.collection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve notifications: %v", err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %v", err)
	}
	return notifications, nil
}

func (nr *NotificationRepo) Get(ctx context.Context, id string) (*models.Notification, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.NewValidationError("invalid notification ID format")
	}

	var notification models.Notification
	if err := nr.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&notification); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.NewNotFoundError("notification")
		}
		return nil, fmt.Errorf("failed to fetch notification: %v", err)
	}
	return &notification, nil
}

func (nr *NotificationRepo) MarkRead(ctx context.Context, id string, readAt time.Time) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.NewValidationError("invalid notification ID format")
	}

	update := bson.M{"$set": bson.M{"read": true, "readAt": readAt}}
	result, err := nr.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %v", err)
	}
	if result.MatchedCount == 0 {
		return models.NewNotFoundError("notification")
	}
	return nil
}

func (nr *NotificationRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	result, err := nr.collection.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to clear notifications: %v", err)
	}
	return result.DeletedCount, nil
}
