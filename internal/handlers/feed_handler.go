package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/models"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/repositories"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	postEnricher
	postRepository   repositories.PostRepository
	followRepository repositories.FollowRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	followRepo repositories.FollowRepository,
	likeRepo repositories.LikeRepository,
	commentRepo repositories.CommentRepository,
	savedPostRepo repositories.SavedPostRepository,
) *FeedHandler {
	return &FeedHandler{
		postEnricher: postEnricher{
			userRepository:      userRepo,
			likeRepository:      likeRepo,
			commentRepository:   commentRepo,
			savedPostRepository: savedPostRepo,
		},
		postRepository:   postRepo,
		followRepository: followRepo,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.GET("/feed", h.GetFeed, requireAuth)
}

// GetFeed returns the newest posts of the users the current user follows, and their own
func (h *FeedHandler) GetFeed(c echo.Context) error {
	claims, err := mustClaims(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	selfID, err := repositories.ParseID(claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	authors, err := h.followRepository.GetFollowingIDs(ctx, claims.UserID)
	if err != nil {
		return repoError(err, "user")
	}
	authors = append(authors, selfID)

	page := pageFromQuery(c)
	filter := models.PostFilter{Authors: authors, Sort: models.SortNewest}
	posts, total, err := h.postRepository.ListPosts(ctx, filter, page)
	if err != nil {
		return internalError(err)
	}

	views, err := h.enrich(ctx, posts, claims.UserID)
	if err != nil {
		return internalError(err)
	}
	return paginated(c, "posts", views, page, total)
}
