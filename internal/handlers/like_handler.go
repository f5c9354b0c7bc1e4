package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/models"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/repositories"
)

// LikeHandler handles reactions on posts
type LikeHandler struct {
	likeRepository         repositories.LikeRepository
	postRepository         repositories.PostRepository
	notificationRepository repositories.NotificationRepository
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(
	likeRepo repositories.LikeRepository,
	postRepo repositories.PostRepository,
	notificationRepo repositories.NotificationRepository,
) *LikeHandler {
	return &LikeHandler{
		likeRepository:         likeRepo,
		postRepository:         postRepo,
		notificationRepository: notificationRepo,
	}
}

// RegisterLikeRoutes registers reaction routes on the posts group
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group, requireAuth, optionalAuth echo.MiddlewareFunc) {
	g.POST("/:id/reactions", h.React, requireAuth)
	g.DELETE("/:id/reactions", h.RemoveReaction, requireAuth)
	g.GET("/:id/reactions", h.GetReactions, optionalAuth)
}

// React sets the user's reaction on a post. Sending the current reaction again removes it.
func (h *LikeHandler) React(c echo.Context) error {
	claims, err := mustClaims(c)
	if err != nil {
		return err
	}

	var req models.ReactRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	post, err := h.postRepository.GetPostByID(ctx, c.Param("id"))
	if err != nil {
		return repoError(err, "post")
	}
	userID, err := repositories.ParseID(claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	reaction, created, err := h.likeRepository.React(ctx, post.ID, userID, models.ReactionType(req.Type))
	if err != nil {
		return repoError(err, "reaction")
	}
	if created {
		notify(ctx, h.notificationRepository, &models.Notification{
			Type:        models.NotificationLike,
			ActorID:     claims.UserID,
			RecipientID: post.Author.Hex(),
			TargetID:    post.ID.Hex(),
			TargetType:  "post",
			Message:     "reacted " + string(reaction) + " to your post",
		})
	}

	summary, err := h.summary(c, post.ID, userID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"reaction": reaction, "summary": summary})
}

// RemoveReaction deletes the user's reaction on a post
func (h *LikeHandler) RemoveReaction(c echo.Context) error {
	claims, err := mustClaims(c)
	if err != nil {
		return err
	}

	postID, err := repositories.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}
	userID, err := repositories.ParseID(claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	if err := h.likeRepository.DeleteReaction(c.Request().Context(), postID, userID); err != nil {
		return repoError(err, "reaction")
	}

	summary, err := h.summary(c, postID, userID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"reaction": nil, "summary": summary})
}

// GetReactions returns the reaction counts of a post and the viewer's own reaction
func (h *LikeHandler) GetReactions(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := h.postRepository.GetPostByID(ctx, c.Param("id"))
	if err != nil {
		return repoError(err, "post")
	}

	viewer, _ := primitive.ObjectIDFromHex(getUserIDFromContext(c))
	summary, err := h.summary(c, post.ID, viewer)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"summary": summary})
}

func (h *LikeHandler) summary(c echo.Context, postID, viewer primitive.ObjectID) (*models.ReactionSummary, error) {
	ctx := c.Request().Context()
	counts, total, err := h.likeRepository.Summary(ctx, postID)
	if err != nil {
		return nil, internalError(err)
	}

	summary := &models.ReactionSummary{PostID: postID.Hex(), Total: total, Counts: counts}
	if !viewer.IsZero() {
		if summary.MyReaction, err = h.likeRepository.GetReaction(ctx, postID, viewer); err != nil {
			return nil, internalError(err)
		}
	}
	return summary, nil
}
