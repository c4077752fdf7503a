package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JethroRendon/Groupify---CC-206-Final-Project/logging"
	"github.com/JethroRendon/Groupify---CC-206-Final-Project/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/exp/rand"
)

const accessCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func init() {
	rand.Seed(uint64(time.Now().UnixNano()))
}

type membersResolver interface {
	ResolveProfiles(ctx context.Context, ids []string) map[string]models.User
}

type GroupService struct {
	groups   *mongo.Collection
	users    *mongo.Collection
	notifier taskNotifier
	resolver membersResolver
}

func NewGroupService(groups, users *mongo.Collection, notifier taskNotifier, resolver membersResolver) *GroupService {
	return &GroupService{groups: groups, users: users, notifier: notifier, resolver: resolver}
}

// GroupMember is the expanded roster entry returned to clients.
type GroupMember struct {
	UID      string `json:"uid"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

func generateAccessCode() string {
	code := make([]byte, 6)
	for i := range code {
		code[i] = accessCodeAlphabet[rand.Intn(len(accessCodeAlphabet))]
	}
	return string(code)
}

func (s *GroupService) CreateGroup(ctx context.Context, actorID, name, description, subject string) (*models.Group, error) {
	if name == "" || subject == "" {
		return nil, models.NewValidationError("group name and subject are required")
	}

	group := &models.Group{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Description: description,
		Subject:     subject,
		CreatedBy:   actorID,
		Members:     []string{actorID},
		AccessCode:  generateAccessCode(),
		IsActive:    true,
		CreatedAt:   time.Now(),
	}

	if _, err := s.groups.InsertOne(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %v", err)
	}

	s.addGroupToUser(ctx, actorID, "", group.ID.Hex())
	return group, nil
}

// ActiveGroupsForUser lists the caller's active group memberships.
func (s *GroupService) ActiveGroupsForUser(ctx context.Context, userID string) ([]models.Group, error) {
	cursor, err := s.groups.Find(ctx, bson.M{"members": userID, "isActive": true})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve groups: %v", err)
	}
	defer cursor.Close(ctx)

	var groups []models.Group
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode groups: %v", err)
	}
	return groups, nil
}

func (s *GroupService) GetGroup(ctx context.Context, actorID, groupID string) (*models.Group, error) {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(actorID) {
		return nil, models.NewAuthorizationError("access denied: you are not a member of this group")
	}
	return group, nil
}

// Members expands the roster to user details. Lookups are best-effort: a
// missing or unreadable profile yields an Unknown placeholder, never an
// error.
func (s *GroupService) Members(ctx context.Context, actorID, groupID string) ([]GroupMember, error) {
	group, err := s.GetGroup(ctx, actorID, groupID)
	if err != nil {
		return nil, err
	}

	roster := group.Members
	if len(roster) > 200 {
		roster = roster[:200]
	}
	profiles := s.resolver.ResolveProfiles(ctx, roster)

	members := make([]GroupMember, 0, len(roster))
	for _, uid := range roster {
		member := GroupMember{UID: uid, FullName: "Unknown"}
		if profile, ok := profiles[uid]; ok {
			member.FullName = firstNonEmpty(strings.TrimSpace(profile.FullName), "Unnamed")
			member.Email = strings.TrimSpace(profile.Email)
		}
		members = append(members, member)
	}
	return members, nil
}

func (s *GroupService) JoinByAccessCode(ctx context.Context, actorID, actorEmail, accessCode string) (*models.Group, error) {
	if accessCode == "" {
		return nil, models.NewValidationError("access code is required")
	}

	var group models.Group
	filter := bson.M{"accessCode": strings.ToUpper(accessCode), "isActive": true}
	if err := s.groups.FindOne(ctx, filter).Decode(&group); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.NewNotFoundError("group with access code")
		}
		return nil, fmt.Errorf("failed to look up access code: %v", err)
	}

	if group.HasMember(actorID) {
		return nil, models.NewValidationError("you are already a member of this group")
	}

	update := bson.M{"$addToSet": bson.M{"members": actorID}}
	if _, err := s.groups.UpdateOne(ctx, bson.M{"_id": group.ID}, update); err != nil {
		return nil, fmt.Errorf("failed to join group: %v", err)
	}
	group.Members = append(group.Members, actorID)

	s.addGroupToUser(ctx, actorID, actorEmail, group.ID.Hex())
	return &group, nil
}

type GroupPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Subject     *string `json:"subject"`
}

func (s *GroupService) UpdateGroup(ctx context.Context, actorID, groupID string, patch GroupPatch) error {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return err
	}
	if group.CreatedBy != actorID {
		return models.NewAuthorizationError("only group creator can update group details")
	}

	set := bson.M{}
	if patch.Name != nil && *patch.Name != "" {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Subject != nil && *patch.Subject != "" {
		set["subject"] = *patch.Subject
	}
	if len(set) == 0 {
		return models.NewValidationError("no fields to update")
	}

	if _, err := s.groups.UpdateOne(ctx, bson.M{"_id": group.ID}, bson.M{"$set": set}); err != nil {
		return fmt.Errorf("failed to update group: %v", err)
	}
	return nil
}

// DeleteGroup soft-deletes: the group goes inactive and members' groupIds
// are cleaned up best-effort. Tasks are intentionally left in place.
func (s *GroupService) DeleteGroup(ctx context.Context, actorID, groupID string) error {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return err
	}
	if group.CreatedBy != actorID {
		return models.NewAuthorizationError("only group creator can delete group")
	}

	if _, err := s.groups.UpdateOne(ctx, bson.M{"_id": group.ID}, bson.M{"$set": bson.M{"isActive": false}}); err != nil {
		return fmt.Errorf("failed to delete group: %v", err)
	}

	if len(group.Members) > 0 {
		filter := bson.M{"_id": bson.M{"$in": group.Members}}
		update := bson.M{"$pull": bson.M{"groupIds": groupID}}
		if _, err := s.users.UpdateMany(ctx, filter, update); err != nil {
			logging.Logger.Warnf("Event ID: GROUP_MEMBERSHIP_CLEANUP_FAILED, Description: Failed to remove group %s from member docs: %v", groupID, err)
		}
	}
	return nil
}

func (s *GroupService) LeaveGroup(ctx context.Context, actorID, groupID string) error {
	group, err := s.load(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.HasMember(actorID) {
		return models.NewValidationError("you are not a member of this group")
	}
	if group.CreatedBy == actorID {
		return models.NewValidationError("group creator must delete or transfer ownership before leaving")
	}

	remaining := make([]string, 0, len(group.Members))
	for _, member := range group.Members {
		if member != actorID {
			remaining = append(remaining, member)
		}
	}

	set := bson.M{"members": remaining}
	if len(remaining) == 0 {
		set["isActive"] = false
	}
	if _, err := s.groups.UpdateOne(ctx, bson.M{"_id": group.ID}, bson.M{"$set": set}); err != nil {
		return fmt.Errorf("failed to leave group: %v", err)
	}

	update := bson.M{"$pull": bson.M{"groupIds": groupID}}
	if _, err := s.users.UpdateOne(ctx, bson.M{"_id": actorID}, update); err != nil {
		logging.Logger.Warnf("Event ID: GROUP_LEAVE_CLEANUP_FAILED, Description: Failed to remove group %s from user %s: %v", groupID, actorID, err)
	}

	s.notifier.Broadcast(ctx, remaining, []string{actorID}, NotificationInput{
		Type:    models.NotificationMemberLeft,
		GroupID: groupID,
		Message: fmt.Sprintf("A member left group %q", firstNonEmpty(group.Name, "Unnamed")),
		ActorID: actorID,
	})
	return nil
}

func (s *GroupService) load(ctx context.Context, groupID string) (*models.Group, error) {
	objectID, err := primitive.ObjectIDFromHex(groupID)
	if err != nil {
		return nil, models.NewValidationError("invalid group ID format")
	}

	var group models.Group
	if err := s.groups.FindOne(ctx, bson.M{"_id": objectID}).Decode(&group); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.NewNotFoundError("group")
		}
		return nil, fmt.Errorf("failed to fetch group: %v", err)
	}
	return &group, nil
}

// addGroupToUser records the membership on the user document, creating a
// minimal document when the identity provider has not produced one yet.
// Best-effort: failure is logged, the group mutation already committed.
func (s *GroupService) addGroupToUser(ctx context.Context, userID, email, groupID string) {
	filter := bson.M{"_id": userID}
	update := bson.M{
		"$addToSet":    bson.M{"groupIds": groupID},
		"$setOnInsert": bson.M{"email": email, "createdAt": time.Now()},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := s.users.UpdateOne(ctx, filter, update, opts); err != nil {
		logging.Logger.Warnf("Event ID: USER_GROUP_UPDATE_FAILED, Description: Failed to record group %s on user %s: %v", groupID, userID, err)
	}
}
