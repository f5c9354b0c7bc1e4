package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/models"
)

var ErrSelfFollow = errors.New("cannot follow yourself")

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	ToggleFollow(ctx context.Context, followerID, targetID string) (bool, error)
	IsFollowing(ctx context.Context, followerID, targetID string) (bool, error)
	GetFollowers(ctx context.Context, userID string, page models.Page) ([]models.User, int64, error)
	GetFollowing(ctx context.Context, userID string, page models.Page) ([]models.User, int64, error)
	GetFollowingIDs(ctx context.Context, userID string) ([]primitive.ObjectID, error)
}

// MongoFollowRepository keeps the graph in the users' followers/following arrays.
type MongoFollowRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoFollowRepository creates a new MongoFollowRepository
func NewMongoFollowRepository(db *mongo.Database) *MongoFollowRepository {
	return &MongoFollowRepository{collection: db.Collection(usersCollection), now: time.Now}
}

// ToggleFollow follows targetID if followerID is not following it yet, otherwise unfollows.
// It returns the new state. The two documents are written without a transaction; if the
// second write fails the first one is reverted.
func (r *MongoFollowRepository) ToggleFollow(ctx context.Context, followerID, targetID string) (bool, error) {
	follower, target, err := parsePair(followerID, targetID)
	if err != nil {
		return false, err
	}
	if follower == target {
		return false, ErrSelfFollow
	}

	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": target})
	if err != nil {
		return false, mongoErr(err, "user")
	}
	if n == 0 {
		return false, fmt.Errorf("user %w", ErrNotFound)
	}

	following, err := r.isFollowing(ctx, follower, target)
	if err != nil {
		return false, err
	}

	op, undo := "$addToSet", "$pull"
	if following {
		op, undo = "$pull", "$addToSet"
	}

	now := r.now()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": follower},
		bson.M{op: bson.M{"following": target}, "$set": bson.M{"updated_at": now}})
	if err != nil {
		return false, mongoErr(err, "follower")
	}
	if res.MatchedCount == 0 {
		return false, fmt.Errorf("follower %w", ErrNotFound)
	}

	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": target},
		bson.M{op: bson.M{"followers": follower}, "$set": bson.M{"updated_at": now}})
	if err != nil {
		if _, rerr := r.collection.UpdateOne(ctx, bson.M{"_id": follower}, bson.M{undo: bson.M{"following": target}}); rerr != nil {
			log.Printf("follow: failed to revert %s -> %s: %v", followerID, targetID, rerr)
		}
		return false, mongoErr(err, "followee")
	}

	return !following, nil
}

func (r *MongoFollowRepository) IsFollowing(ctx context.Context, followerID, targetID string) (bool, error) {
	follower, target, err := parsePair(followerID, targetID)
	if err != nil {
		return false, err
	}
	return r.isFollowing(ctx, follower, target)
}

func (r *MongoFollowRepository) isFollowing(ctx context.Context, follower, target primitive.ObjectID) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": follower, "following": target})
	if err != nil {
		return false, mongoErr(err, "follow")
	}
	return n > 0, nil
}

func (r *MongoFollowRepository) GetFollowers(ctx context.Context, userID string, page models.Page) ([]models.User, int64, error) {
	return r.listEdge(ctx, userID, "followers", page)
}

func (r *MongoFollowRepository) GetFollowing(ctx context.Context, userID string, page models.Page) ([]models.User, int64, error) {
	return r.listEdge(ctx, userID, "following", page)
}

// listEdge pages through the users referenced by one of the user's graph arrays.
func (r *MongoFollowRepository) listEdge(ctx context.Context, userID, field string, page models.Page) ([]models.User, int64, error) {
	ids, err := r.edgeIDs(ctx, userID, field)
	if err != nil {
		return nil, 0, err
	}

	users := []models.User{}
	total := int64(len(ids))
	start := page.Skip()
	if start >= total {
		return users, total, nil
	}
	end := start + page.Limit()
	if end > total {
		end = total
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids[start:end]}},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, 0, mongoErr(err, "users")
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &users); err != nil {
		return nil, 0, mongoErr(err, "users")
	}
	return users, total, nil
}

func (r *MongoFollowRepository) GetFollowingIDs(ctx context.Context, userID string) ([]primitive.ObjectID, error) {
	return r.edgeIDs(ctx, userID, "following")
}

func (r *MongoFollowRepository) edgeIDs(ctx context.Context, userID, field string) ([]primitive.ObjectID, error) {
	objID, err := ParseID(userID)
	if err != nil {
		return nil, err
	}

	var doc struct {
		IDs []primitive.ObjectID `bson:"ids"`
	}
	opts := options.FindOne().SetProjection(bson.M{"ids": "$" + field})
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}, opts).Decode(&doc); err != nil {
		return nil, mongoErr(err, "user")
	}
	if doc.IDs == nil {
		doc.IDs = []primitive.ObjectID{}
	}
	return doc.IDs, nil
}

func parsePair(a, b string) (primitive.ObjectID, primitive.ObjectID, error) {
	x, err := ParseID(a)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	y, err := ParseID(b)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	return x, y, nil
}
