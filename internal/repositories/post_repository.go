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
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/slug"
)

// slugAttempts bounds the retries when a generated slug collides with an existing post.
const slugAttempts = 5

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	GetPostsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error)
	ViewPost(ctx context.Context, idOrSlug string) (*models.Post, error)
	ListPosts(ctx context.Context, filter models.PostFilter, page models.Page) ([]models.Post, int64, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id string) error
	CountPostsByAuthor(ctx context.Context, authorID primitive.ObjectID) (int64, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
	likes      *mongo.Collection
	now        func() time.Time
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{
		collection: db.Collection(postsCollection),
		likes:      db.Collection(likesCollection),
		now:        time.Now,
	}
}

// CreatePost inserts post. post.Slug is used as the base slug; on collision a random
// suffix is appended and the insert retried.
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = r.now()
	post.UpdatedAt = post.CreatedAt
	if post.Tags == nil {
		post.Tags = []string{}
	}
	return r.withUniqueSlug(post, func() error {
		_, err := r.collection.InsertOne(ctx, post)
		return err
	})
}

func (r *MongoPostRepository) withUniqueSlug(post *models.Post, write func() error) error {
	base := post.Slug
	for i := 0; i < slugAttempts; i++ {
		err := write()
		if err == nil {
			return nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return mongoErr(err, "post")
		}
		post.Slug = slug.WithSuffix(base)
	}
	return fmt.Errorf("post slug %q %w", base, ErrDuplicate)
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

func (r *MongoPostRepository) GetPostBySlug(ctx context.Context, s string) (*models.Post, error) {
	return r.findOne(ctx, bson.M{"slug": s})
}

// GetPostsByIDs loads the given posts in one query; unknown ids are skipped.
func (r *MongoPostRepository) GetPostsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	posts := []models.Post{}
	if len(ids) == 0 {
		return posts, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, mongoErr(err, "posts")
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, mongoErr(err, "posts")
	}
	return posts, nil
}

func (r *MongoPostRepository) findOne(ctx context.Context, filter bson.M) (*models.Post, error) {
	var post models.Post
	if err := r.collection.FindOne(ctx, filter).Decode(&post); err != nil {
		return nil, mongoErr(err, "post")
	}
	return &post, nil
}

// ViewPost looks a post up by id or slug and increments its view counter.
// A 24-hex value may be either, since titles can slugify to one.
func (r *MongoPostRepository) ViewPost(ctx context.Context, idOrSlug string) (*models.Post, error) {
	filter := bson.M{"slug": idOrSlug}
	if objID, err := primitive.ObjectIDFromHex(idOrSlug); err == nil {
		filter = bson.M{"$or": bson.A{bson.M{"_id": objID}, bson.M{"slug": idOrSlug}}}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$inc": bson.M{"views": 1}}, opts).Decode(&post)
	if err != nil {
		return nil, mongoErr(err, "post")
	}
	return &post, nil
}

// ListPosts returns one page of posts matching filter plus the total match count.
func (r *MongoPostRepository) ListPosts(ctx context.Context, filter models.PostFilter, page models.Page) ([]models.Post, int64, error) {
	query := postQuery(filter)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, mongoErr(err, "posts")
	}

	var cursor *mongo.Cursor
	if filter.Sort == models.SortPopular {
		cursor, err = r.collection.Aggregate(ctx, popularPipeline(query, page))
	} else {
		findOptions := options.Find().
			SetSkip(page.Skip()).
			SetLimit(page.Limit()).
			SetSort(postSort(filter.Sort))
		cursor, err = r.collection.Find(ctx, query, findOptions)
	}
	if err != nil {
		return nil, 0, mongoErr(err, "posts")
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, 0, mongoErr(err, "posts")
	}
	return posts, total, nil
}

func postQuery(f models.PostFilter) bson.M {
	query := bson.M{}
	if f.Tag != "" {
		query["tags"] = f.Tag
	}
	if !f.Author.IsZero() {
		query["author"] = f.Author
	} else if f.Authors != nil {
		query["author"] = bson.M{"$in": f.Authors}
	}
	if f.Query != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
		query["$or"] = bson.A{bson.M{"title": re}, bson.M{"body": re}, bson.M{"tags": re}}
	}
	return query
}

func postSort(sort string) bson.D {
	switch sort {
	case models.SortOldest:
		return bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}
	case models.SortViews:
		return bson.D{{Key: "views", Value: -1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	}
}

// popularPipeline orders posts by their number of reactions.
func popularPipeline(query bson.M, page models.Page) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: query}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: likesCollection},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "post"},
			{Key: "as", Value: "_likes"},
		}}},
		{{Key: "$addFields", Value: bson.D{{Key: "_likes_count", Value: bson.D{{Key: "$size", Value: "$_likes"}}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "_likes_count", Value: -1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$skip", Value: page.Skip()}},
		{{Key: "$limit", Value: page.Limit()}},
		{{Key: "$project", Value: bson.D{{Key: "_likes", Value: 0}, {Key: "_likes_count", Value: 0}}}},
	}
}

// UpdatePost replaces the editable fields of post.
func (r *MongoPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = r.now()
	return r.withUniqueSlug(post, func() error {
		update := bson.M{
			"$set": bson.M{
				"title":      post.Title,
				"body":       post.Body,
				"slug":       post.Slug,
				"image_url":  post.ImageURL,
				"tags":       post.Tags,
				"updated_at": post.UpdatedAt,
			},
		}
		res, err := r.collection.UpdateOne(ctx, bson.M{"_id": post.ID}, update)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return mongo.ErrNoDocuments
		}
		return nil
	})
}

// DeletePost deletes a post and its reactions.
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := ParseID(id)
	if err != nil {
		return err
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return mongoErr(err, "post")
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("post %w", ErrNotFound)
	}

	if _, err := r.likes.DeleteMany(ctx, bson.M{"post": objID}); err != nil {
		return mongoErr(err, "post likes")
	}
	return nil
}

func (r *MongoPostRepository) CountPostsByAuthor(ctx context.Context, authorID primitive.ObjectID) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"author": authorID})
	if err != nil {
		return 0, mongoErr(err, "posts")
	}
	return n, nil
}
