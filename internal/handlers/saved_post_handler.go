package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/models"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/repositories"
)

// SavedPostHandler handles saved post HTTP requests
type SavedPostHandler struct {
	postEnricher
	postRepository repositories.PostRepository
}

// NewSavedPostHandler creates a new SavedPostHandler
func NewSavedPostHandler(
	savedPostRepo repositories.SavedPostRepository,
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	likeRepo repositories.LikeRepository,
	commentRepo repositories.CommentRepository,
) *SavedPostHandler {
	return &SavedPostHandler{
		postEnricher: postEnricher{
			userRepository:      userRepo,
			likeRepository:      likeRepo,
			commentRepository:   commentRepo,
			savedPostRepository: savedPostRepo,
		},
		postRepository: postRepo,
	}
}

// RegisterSavedPostRoutes registers the bookmark routes on the posts and users groups
func (h *SavedPostHandler) RegisterSavedPostRoutes(posts, users *echo.Group, requireAuth echo.MiddlewareFunc) {
	posts.POST("/:id/save", h.SavePost, requireAuth)
	posts.DELETE("/:id/save", h.UnsavePost, requireAuth)
	users.GET("/me/saved", h.GetSavedPosts, requireAuth)
}

// SavePost saves/bookmarks a post
func (h *SavedPostHandler) SavePost(c echo.Context) error {
	claims, err := mustClaims(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	// Verify post exists
	post, err := h.postRepository.GetPostByID(ctx, c.Param("id"))
	if err != nil {
		return repoError(err, "post")
	}

	savedPost := &models.SavedPost{UserID: claims.UserID, PostID: post.ID.Hex()}
	if err := h.savedPostRepository.SavePost(ctx, savedPost); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return echo.NewHTTPError(http.StatusConflict, "Post already saved")
		}
		return internalError(err)
	}

	return ok(c, http.StatusCreated, echo.Map{"saved": true})
}

// UnsavePost removes a post from saved
func (h *SavedPostHandler) UnsavePost(c echo.Context) error {
	claims, err := mustClaims(c)
	if err != nil {
		return err
	}

	if err := h.savedPostRepository.UnsavePost(c.Request().Context(), claims.UserID, c.Param("id")); err != nil {
		return repoError(err, "saved post")
	}

	return ok(c, http.StatusOK, echo.Map{"saved": false})
}

// GetSavedPosts lists the user's saved posts, most recently saved first
func (h *SavedPostHandler) GetSavedPosts(c echo.Context) error {
	claims, err := mustClaims(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	page := pageFromQuery(c)
	hexIDs, total, err := h.savedPostRepository.ListSavedPostIDs(ctx, claims.UserID, page)
	if err != nil {
		return internalError(err)
	}

	ids := make([]primitive.ObjectID, 0, len(hexIDs))
	for _, id := range hexIDs {
		if objID, err := primitive.ObjectIDFromHex(id); err == nil {
			ids = append(ids, objID)
		}
	}
	found, err := h.postRepository.GetPostsByIDs(ctx, ids)
	if err != nil {
		return internalError(err)
	}

	byID := make(map[primitive.ObjectID]models.Post, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	posts := make([]models.Post, 0, len(found))
	for _, id := range ids {
		if p, exists := byID[id]; exists {
			posts = append(posts, p)
		}
	}

	views, err := h.enrich(ctx, posts, claims.UserID)
	if err != nil {
		return internalError(err)
	}
	return paginated(c, "posts", views, page, total)
}
