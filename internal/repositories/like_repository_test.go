package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/models"
)

const likesNS = "db.likes"

func likeDoc(post, user primitive.ObjectID, t models.ReactionType) bson.D {
	return bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "post", Value: post},
		{Key: "user", Value: user},
		{Key: "type", Value: string(t)},
	}
}

func TestLikeRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	post, user := primitive.NewObjectID(), primitive.NewObjectID()

	mt.Run("new reaction", func(mt *mtest.T) {
		repo := NewMongoLikeRepository(mt.DB)
		mt.AddMockResponses(emptyCursor(likesNS), findAndModifyResponse(nil))

		got, created, err := repo.React(ctx, post, user, models.ReactionLove)
		require.NoError(mt, err)
		assert.Equal(mt, models.ReactionLove, got)
		assert.True(mt, created)
	})

	mt.Run("concurrent first reaction retries the upsert", func(mt *mtest.T) {
		repo := NewMongoLikeRepository(mt.DB)
		mt.AddMockResponses(
			emptyCursor(likesNS),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 11000, Name: "DuplicateKey", Message: "E11000 duplicate key error"}),
			findAndModifyResponse(likeDoc(post, user, models.ReactionLike)),
		)

		got, created, err := repo.React(ctx, post, user, models.ReactionLove)
		require.NoError(mt, err)
		assert.Equal(mt, models.ReactionLove, got)
		assert.False(mt, created)

		events := mt.GetAllStartedEvents()
		require.Len(mt, events, 3)
		assert.Equal(mt, "findAndModify", events[1].CommandName)
		assert.Equal(mt, "findAndModify", events[2].CommandName)
	})

	mt.Run("switch reaction", func(mt *mtest.T) {
		repo := NewMongoLikeRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, likesNS, mtest.FirstBatch, likeDoc(post, user, models.ReactionLike)),
			findAndModifyResponse(likeDoc(post, user, models.ReactionLike)),
		)

		got, created, err := repo.React(ctx, post, user, models.ReactionWow)
		require.NoError(mt, err)
		assert.Equal(mt, models.ReactionWow, got)
		assert.False(mt, created)
	})

	mt.Run("same reaction toggles off", func(mt *mtest.T) {
		repo := NewMongoLikeRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, likesNS, mtest.FirstBatch, likeDoc(post, user, models.ReactionLike)),
			writeResponse(1),
		)

		got, created, err := repo.React(ctx, post, user, models.ReactionLike)
		require.NoError(mt, err)
		assert.Equal(mt, models.ReactionType(""), got)
		assert.False(mt, created)
	})

	mt.Run("remove missing reaction", func(mt *mtest.T) {
		repo := NewMongoLikeRepository(mt.DB)
		mt.AddMockResponses(writeResponse(0))

		assert.ErrorIs(mt, repo.DeleteReaction(ctx, post, user), ErrNotFound)
	})

	mt.Run("summary", func(mt *mtest.T) {
		repo := NewMongoLikeRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, likesNS, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "like"}, {Key: "count", Value: int64(2)}},
			bson.D{{Key: "_id", Value: "love"}, {Key: "count", Value: int64(1)}},
		))

		counts, total, err := repo.Summary(ctx, post)
		require.NoError(mt, err)
		assert.EqualValues(mt, 3, total)
		assert.EqualValues(mt, 2, counts[models.ReactionLike])
		assert.EqualValues(mt, 1, counts[models.ReactionLove])
	})

	mt.Run("counts by posts", func(mt *mtest.T) {
		repo := NewMongoLikeRepository(mt.DB)
		other := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, likesNS, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: post}, {Key: "count", Value: int64(4)}},
		))

		counts, err := repo.CountsByPosts(ctx, []primitive.ObjectID{post, other})
		require.NoError(mt, err)
		assert.EqualValues(mt, 4, counts[post])
		assert.Zero(mt, counts[other])
	})

	mt.Run("reactions by user", func(mt *mtest.T) {
		repo := NewMongoLikeRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, likesNS, mtest.FirstBatch,
			likeDoc(post, user, models.ReactionSad),
		))

		reactions, err := repo.ReactionsByUser(ctx, user, []primitive.ObjectID{post})
		require.NoError(mt, err)
		assert.Equal(mt, models.ReactionSad, reactions[post])
	})
}
