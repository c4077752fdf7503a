package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/JethroRendon/Groupify---CC-206-Final-Project/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaxWriteBatchSize is the store's per-batch mutation ceiling. A single
// BulkWrite issued by this adapter never exceeds it.
const MaxWriteBatchSize = 500

type ActivityRepo struct {
	collection *mongo.Collection
}

func NewActivityRepo(collection *mongo.Collection) *ActivityRepo {
	return &ActivityRepo{collection: collection}
}

func (ar *ActivityRepo) Insert(ctx context.Context, entry *models.ActivityLog) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	if _, err := ar.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to write activity entry: %v", err)
	}
	return nil
}

// ListByGroup returns up to limit entries for the group with no ordering
// guarantee; callers sort in memory.
func (ar *ActivityRepo) ListByGroup(ctx context.Context, groupID string, limit int64) ([]models.ActivityLog, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := ar.collection.Find(ctx, bson.M{"groupId": groupID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve activities: %v", err)
	}
	defer cursor.Close(ctx)

	var entries []models.ActivityLog
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode activities: %v", err)
	}
	return entries, nil
}

func (ar *ActivityRepo) IDsByGroup(ctx context.Context, groupID string) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := ar.collection.Find(ctx, bson.M{"groupId": groupID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity ids: %v", err)
	}
	defer cursor.Close(ctx)

	var ids []primitive.ObjectID
	for cursor.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode activity id: %v", err)
		}
		ids = append(ids, doc.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return ids, nil
}

// DeleteByIDs removes one batch of entries atomically. The batch must stay
// within MaxWriteBatchSize.
func (ar *ActivityRepo) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if len(ids) > MaxWriteBatchSize {
		return 0, fmt.Errorf("batch of %d exceeds write batch limit of %d", len(ids), MaxWriteBatchSize)
	}

	writes := make([]mongo.WriteModel, 0, len(ids))
	for _, id := range ids {
		writes = append(writes, mongo.NewDeleteOneModel().SetFilter(bson.M{"_id": id}))
	}

	result, err := ar.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
	if err != nil {
		return 0, fmt.Errorf("failed to delete activity batch: %v", err)
	}
	return result.DeletedCount, nil
}
