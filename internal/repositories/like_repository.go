package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/models"
)

// LikeRepository defines the interface for reaction data operations
type LikeRepository interface {
	React(ctx context.Context, postID, userID primitive.ObjectID, t models.ReactionType) (models.ReactionType, bool, error)
	GetReaction(ctx context.Context, postID, userID primitive.ObjectID) (models.ReactionType, error)
	DeleteReaction(ctx context.Context, postID, userID primitive.ObjectID) error
	Summary(ctx context.Context, postID primitive.ObjectID) (map[models.ReactionType]int64, int64, error)
	CountsByPosts(ctx context.Context, postIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error)
	ReactionsByUser(ctx context.Context, userID primitive.ObjectID, postIDs []primitive.ObjectID) (map[primitive.ObjectID]models.ReactionType, error)
}

// MongoLikeRepository implements LikeRepository for MongoDB
type MongoLikeRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoLikeRepository creates a new MongoLikeRepository
func NewMongoLikeRepository(db *mongo.Database) *MongoLikeRepository {
	return &MongoLikeRepository{collection: db.Collection(likesCollection), now: time.Now}
}

// React records the user's reaction to a post. Reacting again with the same type
// removes the reaction. It returns the reaction now in place ("" when removed) and
// whether a new reaction was created.
func (r *MongoLikeRepository) React(ctx context.Context, postID, userID primitive.ObjectID, t models.ReactionType) (models.ReactionType, bool, error) {
	current, err := r.GetReaction(ctx, postID, userID)
	if err != nil {
		return "", false, err
	}
	if current == t {
		if err := r.DeleteReaction(ctx, postID, userID); err != nil {
			return "", false, err
		}
		return "", false, nil
	}

	now := r.now()
	update := bson.M{
		"$set":         bson.M{"type": t, "updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.Before)

	filter := bson.M{"post": postID, "user": userID}

	var previous models.Like
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&previous)
	if mongo.IsDuplicateKeyError(err) {
		// a concurrent upsert inserted the document first; this attempt now updates it
		err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&previous)
	}
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return t, true, nil
	case err != nil:
		return "", false, mongoErr(err, "like")
	}
	return t, false, nil
}

// GetReaction returns the user's reaction type, or "" if they have not reacted.
func (r *MongoLikeRepository) GetReaction(ctx context.Context, postID, userID primitive.ObjectID) (models.ReactionType, error) {
	var like models.Like
	err := r.collection.FindOne(ctx, bson.M{"post": postID, "user": userID}).Decode(&like)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", mongoErr(err, "like")
	}
	return like.Type, nil
}

func (r *MongoLikeRepository) DeleteReaction(ctx context.Context, postID, userID primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"post": postID, "user": userID})
	if err != nil {
		return mongoErr(err, "like")
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("reaction %w", ErrNotFound)
	}
	return nil
}

type reactionCount struct {
	Type  models.ReactionType `bson:"_id"`
	Count int64               `bson:"count"`
}

// Summary counts a post's reactions per type.
func (r *MongoLikeRepository) Summary(ctx context.Context, postID primitive.ObjectID) (map[models.ReactionType]int64, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "post", Value: postID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$type"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, mongoErr(err, "likes")
	}
	defer cursor.Close(ctx)

	var rows []reactionCount
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, 0, mongoErr(err, "likes")
	}

	counts := make(map[models.ReactionType]int64, len(rows))
	var total int64
	for _, row := range rows {
		counts[row.Type] = row.Count
		total += row.Count
	}
	return counts, total, nil
}

type postCount struct {
	Post  primitive.ObjectID `bson:"_id"`
	Count int64              `bson:"count"`
}

// CountsByPosts returns the number of reactions of each listed post. Posts without
// reactions are absent from the map.
func (r *MongoLikeRepository) CountsByPosts(ctx context.Context, postIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	counts := make(map[primitive.ObjectID]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "post", Value: bson.D{{Key: "$in", Value: postIDs}}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$post"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mongoErr(err, "likes")
	}
	defer cursor.Close(ctx)

	var rows []postCount
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, mongoErr(err, "likes")
	}
	for _, row := range rows {
		counts[row.Post] = row.Count
	}
	return counts, nil
}

// ReactionsByUser returns the user's reaction on each of the listed posts they reacted to.
func (r *MongoLikeRepository) ReactionsByUser(ctx context.Context, userID primitive.ObjectID, postIDs []primitive.ObjectID) (map[primitive.ObjectID]models.ReactionType, error) {
	reactions := make(map[primitive.ObjectID]models.ReactionType, len(postIDs))
	if len(postIDs) == 0 {
		return reactions, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"user": userID, "post": bson.M{"$in": postIDs}})
	if err != nil {
		return nil, mongoErr(err, "likes")
	}
	defer cursor.Close(ctx)

	var likes []models.Like
	if err = cursor.All(ctx, &likes); err != nil {
		return nil, mongoErr(err, "likes")
	}
	for _, like := range likes {
		reactions[like.Post] = like.Type
	}
	return reactions, nil
}
