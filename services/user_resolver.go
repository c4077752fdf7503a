package services

import (
	"context"
	"fmt"

	"github.com/JethroRendon/Groupify---CC-206-Final-Project/logging"
	"github.com/JethroRendon/Groupify---CC-206-Final-Project/models"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserResolver performs profile lookups for name enrichment. Every call goes
// through the circuit breaker so a degraded users collection cannot stall the
// notification or overview paths that depend on it.
type UserResolver struct {
	users   *mongo.Collection
	breaker *gobreaker.CircuitBreaker
}

func NewUserResolver(users *mongo.Collection, breaker *gobreaker.CircuitBreaker) *UserResolver {
	return &UserResolver{users: users, breaker: breaker}
}

// Profile fetches a single user document.
func (r *UserResolver) Profile(ctx context.Context, uid string) (*models.User, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		var user models.User
		if err := r.users.FindOne(ctx, bson.M{"_id": uid}).Decode(&user); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, models.NewNotFoundError("user")
			}
			return nil, fmt.Errorf("failed to fetch user %s: %v", uid, err)
		}
		return &user, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.User), nil
}

// DisplayName resolves a display name best-effort; returns "" when the user
// is unknown or the lookup fails.
func (r *UserResolver) DisplayName(ctx context.Context, uid string) string {
	if uid == "" {
		return ""
	}
	user, err := r.Profile(ctx, uid)
	if err != nil {
		logging.Logger.Warnf("Event ID: USER_LOOKUP_FAILED, Description: Display name lookup failed for %s: %v", uid, err)
		return ""
	}
	if user.FullName != "" {
		return user.FullName
	}
	return user.Email
}

// ResolveProfiles batch-fetches user documents by id. Best-effort: a failed
// lookup yields an empty map, never an error.
func (r *UserResolver) ResolveProfiles(ctx context.Context, ids []string) map[string]models.User {
	resolved := make(map[string]models.User)
	if len(ids) == 0 {
		return resolved
	}

	result, err := r.breaker.Execute(func() (interface{}, error) {
		cursor, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		var users []models.User
		if err := cursor.All(ctx, &users); err != nil {
			return nil, err
		}
		return users, nil
	})
	if err != nil {
		logging.Logger.Warnf("Event ID: USER_BATCH_LOOKUP_FAILED, Description: Batch profile lookup failed for %d ids: %v", len(ids), err)
		return resolved
	}

	for _, user := range result.([]models.User) {
		resolved[user.UID] = user
	}
	return resolved
}

// ResolveNames maps each id to a display name. Unresolved ids are simply
// absent from the result.
func (r *UserResolver) ResolveNames(ctx context.Context, ids []string) map[string]string {
	names := make(map[string]string)
	for uid, user := range r.ResolveProfiles(ctx, ids) {
		if user.FullName != "" {
			names[uid] = user.FullName
		} else if user.Email != "" {
			names[uid] = user.Email
		} else {
			names[uid] = "Unknown"
		}
	}
	return names
}
