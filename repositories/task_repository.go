package repositories

import (
	"context"
	"fmt"

	"github.com/JethroRendon/Groupify---CC-206-Final-Project/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TaskRepo struct {
	collection *mongo.Collection
}

func NewTaskRepo(collection *mongo.Collection) *TaskRepo {
	return &TaskRepo{collection: collection}
}

func (tr *TaskRepo) Insert(ctx context.Context, task *models.Task) error {
	if _, err := tr.collection.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("failed to create task: %v", err)
	}
	return nil
}

func (tr *TaskRepo) Get(ctx context.Context, id string) (*models.Task, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.NewValidationError("invalid task ID format")
	}

	var task models.Task
	if err := tr.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&task); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.NewNotFoundError("task")
		}
		return nil, fmt.Errorf("failed to fetch task: %v", err)
	}
	return &task, nil
}

// ApplySet commits one $set mutation against a task document.
func (tr *TaskRepo) ApplySet(ctx context.Context, id string, set map[string]interface{}) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.NewValidationError("invalid task ID format")
	}

	if _, err := tr.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}); err != nil {
		return fmt.Errorf("failed to update task: %v", err)
	}
	return nil
}

// ListByGroup returns a group's tasks newest first, optionally filtered by
// status.
func (tr *TaskRepo) ListByGroup(ctx context.Context, groupID, status string) ([]models.Task, error) {
	filter := bson.M{"groupId": groupID}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.M{"createdAt": -1})

	cursor, err := tr.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %v", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %v", err)
	}
	return tasks, nil
}

// ListByUserField returns tasks matching userID on the given document field
// (assignedTo or assignedBy), optionally filtered by status.
func (tr *TaskRepo) ListByUserField(ctx context.Context, field, userID, status string) ([]models.Task, error) {
	filter := bson.M{field: userID}
	if status != "" {
		filter["status"] = status
	}

	cursor, err := tr.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %v", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %v", err)
	}
	return tasks, nil
}

// ListOpenAssignedTo returns the user's tasks still in To Do or In Progress.
func (tr *TaskRepo) ListOpenAssignedTo(ctx context.Context, userID string) ([]models.Task, error) {
	filter := bson.M{
		"assignedTo": userID,
		"status":     bson.M{"$in": []models.TaskStatus{models.StatusToDo, models.StatusInProgress}},
	}

	cursor, err := tr.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %v", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %v", err)
	}
	return tasks, nil
}

func (tr *TaskRepo) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.NewValidationError("invalid task ID format")
	}

	if _, err := tr.collection.DeleteOne(ctx, bson.M{"_id": objectID}); err != nil {
		return fmt.Errorf("failed to delete task: %v", err)
	}
	return nil
}
