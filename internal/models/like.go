package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReactionType is the kind of reaction a user leaves on a post.
type ReactionType string

const (
	ReactionLike  ReactionType = "like"
	ReactionLove  ReactionType = "love"
	ReactionLaugh ReactionType = "laugh"
	ReactionWow   ReactionType = "wow"
	ReactionSad   ReactionType = "sad"
	ReactionAngry ReactionType = "angry"
)

var reactionTypes = []ReactionType{ReactionLike, ReactionLove, ReactionLaugh, ReactionWow, ReactionSad, ReactionAngry}

func (r ReactionType) Valid() bool {
	for _, t := range reactionTypes {
		if r == t {
			return true
		}
	}
	return false
}

func ReactionNames() []string {
	names := make([]string, len(reactionTypes))
	for i, t := range reactionTypes {
		names[i] = string(t)
	}
	return names
}

// Like is one user's reaction to one post; (Post, User) is unique.
type Like struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Post      primitive.ObjectID `json:"post" bson:"post"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	Type      ReactionType       `json:"type" bson:"type"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// ReactionSummary counts reactions on a post by type.
type ReactionSummary struct {
	PostID     string                 `json:"post_id"`
	Total      int64                  `json:"total"`
	Counts     map[ReactionType]int64 `json:"counts"`
	MyReaction ReactionType           `json:"my_reaction,omitempty"`
}

type ReactRequest struct {
	Type string `json:"type" validate:"required,reaction"`
}
