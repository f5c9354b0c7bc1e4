package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a blog post stored in the "posts" collection.
type Post struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title     string             `json:"title" bson:"title"`
	Body      string             `json:"body" bson:"body"`
	Slug      string             `json:"slug" bson:"slug"`
	ImageURL  string             `json:"image_url,omitempty" bson:"image_url,omitempty"`
	Tags      []string           `json:"tags" bson:"tags"`
	Author    primitive.ObjectID `json:"author" bson:"author"`
	Views     int64              `json:"views" bson:"views"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// PostView is a post with the author and engagement counters a reader needs.
type PostView struct {
	Post
	AuthorInfo    UserCompact  `json:"author_info"`
	LikesCount    int64        `json:"likes_count"`
	CommentsCount int64        `json:"comments_count"`
	MyReaction    ReactionType `json:"my_reaction,omitempty"`
	IsSaved       bool         `json:"is_saved"`
}

type CreatePostRequest struct {
	Title    string   `json:"title" validate:"required,min=3,max=150"`
	Body     string   `json:"body" validate:"required,min=1,max=50000"`
	ImageURL string   `json:"image_url,omitempty" validate:"omitempty,url"`
	Tags     []string `json:"tags,omitempty" validate:"omitempty,max=10,dive,min=1,max=30"`
}

// UpdatePostRequest is a merge update: nil fields are left untouched.
type UpdatePostRequest struct {
	Title    *string  `json:"title,omitempty" validate:"omitempty,min=3,max=150"`
	Body     *string  `json:"body,omitempty" validate:"omitempty,min=1,max=50000"`
	ImageURL *string  `json:"image_url,omitempty" validate:"omitempty,url"`
	Tags     []string `json:"tags,omitempty" validate:"omitempty,max=10,dive,min=1,max=30"`
}

// PostListQuery carries the filter and sort parameters of GET /api/posts.
type PostListQuery struct {
	Tag    string `query:"tag" json:"tag"`
	Author string `query:"author" json:"author" validate:"omitempty,objectid"`
	Query  string `query:"q" json:"q"`
	Sort   string `query:"sort" json:"sort" validate:"omitempty,oneof=newest oldest views popular"`
}

// Post list sort orders accepted by the API.
const (
	SortNewest  = "newest"
	SortOldest  = "oldest"
	SortViews   = "views"
	SortPopular = "popular"
)

// PostFilter narrows a post listing. Zero values mean "no constraint".
type PostFilter struct {
	Tag     string
	Author  primitive.ObjectID
	Authors []primitive.ObjectID
	Query   string
	Sort    string
}

// SavedPost is a user's bookmark of a post (PostgreSQL). UserID and PostID hold
// MongoDB ObjectIDs as hex strings.
type SavedPost struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"size:24;index;uniqueIndex:idx_user_post_save"`
	PostID    string    `json:"post_id" gorm:"size:24;index;uniqueIndex:idx_user_post_save"`
	CreatedAt time.Time `json:"created_at"`
}
