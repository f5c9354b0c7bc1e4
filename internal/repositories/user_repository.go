package repositories

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/models"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	SearchUsers(ctx context.Context, query string, page models.Page) ([]models.User, int64, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error
	SetResetCode(ctx context.Context, id primitive.ObjectID, codeHash string, expires time.Time) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	SetRole(ctx context.Context, id string, role string) (*models.User, error)
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
	likes      *mongo.Collection
	now        func() time.Time
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{
		collection: db.Collection(usersCollection),
		likes:      db.Collection(likesCollection),
		now:        time.Now,
	}
}

// CreateUser inserts a new user; a taken email yields ErrDuplicate.
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = r.now()
	user.UpdatedAt = user.CreatedAt
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	_, err := r.collection.InsertOne(ctx, user)
	return mongoErr(err, "user")
}

func (r *MongoUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	objID, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, mongoErr(err, "user")
	}
	return &user, nil
}

// GetUsersByIDs loads the given users in one query; unknown ids are skipped.
func (r *MongoUserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	users := []models.User{}
	if len(ids) == 0 {
		return users, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, mongoErr(err, "users")
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &users); err != nil {
		return nil, mongoErr(err, "users")
	}
	return users, nil
}

// SearchUsers matches name or email case-insensitively; an empty query lists everyone.
func (r *MongoUserRepository) SearchUsers(ctx context.Context, query string, page models.Page) ([]models.User, int64, error) {
	filter := bson.M{}
	if query != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
		filter["$or"] = bson.A{bson.M{"name": re}, bson.M{"email": re}}
	}
	return r.findPage(ctx, filter, page)
}

func (r *MongoUserRepository) findPage(ctx context.Context, filter bson.M, page models.Page) ([]models.User, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, mongoErr(err, "users")
	}

	findOptions := options.Find().
		SetSkip(page.Skip()).
		SetLimit(page.Limit()).
		SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, mongoErr(err, "users")
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, 0, mongoErr(err, "users")
	}
	return users, total, nil
}

// UpdateUser writes the editable profile fields of user.
func (r *MongoUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = r.now()
	update := bson.M{
		"$set": bson.M{
			"name":       user.Name,
			"phone":      user.Phone,
			"bio":        user.Bio,
			"education":  user.Education,
			"work":       user.Work,
			"skills":     user.Skills,
			"social":     user.Social,
			"avatar":     user.Avatar,
			"updated_at": user.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": user.ID}, update)
	if err != nil {
		return mongoErr(err, "user")
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %w", ErrNotFound)
	}
	return nil
}

// DeleteUser removes the user, their reactions and every follow edge pointing at them.
func (r *MongoUserRepository) DeleteUser(ctx context.Context, id string) error {
	objID, err := ParseID(id)
	if err != nil {
		return err
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return mongoErr(err, "user")
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("user %w", ErrNotFound)
	}

	_, err = r.collection.UpdateMany(ctx,
		bson.M{"$or": bson.A{bson.M{"followers": objID}, bson.M{"following": objID}}},
		bson.M{"$pull": bson.M{"followers": objID, "following": objID}},
	)
	if err != nil {
		return mongoErr(err, "follow references")
	}
	if _, err = r.likes.DeleteMany(ctx, bson.M{"user": objID}); err != nil {
		return mongoErr(err, "user likes")
	}
	return nil
}

// SetResetCode stores the hashed password reset code and its expiry.
func (r *MongoUserRepository) SetResetCode(ctx context.Context, id primitive.ObjectID, codeHash string, expires time.Time) error {
	update := bson.M{"$set": bson.M{
		"reset_password_code":    codeHash,
		"reset_password_expires": expires,
		"updated_at":             r.now(),
	}}
	return r.updateByID(ctx, id, update)
}

// UpdatePassword replaces the password hash and clears any pending reset code.
func (r *MongoUserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	update := bson.M{
		"$set":   bson.M{"password": passwordHash, "updated_at": r.now()},
		"$unset": bson.M{"reset_password_code": "", "reset_password_expires": ""},
	}
	return r.updateByID(ctx, id, update)
}

func (r *MongoUserRepository) SetRole(ctx context.Context, id string, role string) (*models.User, error) {
	objID, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objID},
		bson.M{"$set": bson.M{"role": role, "updated_at": r.now()}},
		opts,
	).Decode(&user)
	if err != nil {
		return nil, mongoErr(err, "user")
	}
	return &user, nil
}

func (r *MongoUserRepository) updateByID(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return mongoErr(err, "user")
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %w", ErrNotFound)
	}
	return nil
}
