package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/models"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/repositories"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/slug"
)

// postEnricher turns stored posts into PostViews with authors and engagement counters.
type postEnricher struct {
	userRepository      repositories.UserRepository
	likeRepository      repositories.LikeRepository
	commentRepository   repositories.CommentRepository
	savedPostRepository repositories.SavedPostRepository
}

func (e postEnricher) enrich(ctx context.Context, posts []models.Post, viewerID string) ([]models.PostView, error) {
	views := make([]models.PostView, len(posts))
	if len(posts) == 0 {
		return views, nil
	}

	ids := make([]primitive.ObjectID, len(posts))
	hexIDs := make([]string, len(posts))
	authorIDs := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
		hexIDs[i] = p.ID.Hex()
		authorIDs[i] = p.Author.Hex()
	}

	authors, err := compactUsers(ctx, e.userRepository, authorIDs)
	if err != nil {
		return nil, err
	}
	likes, err := e.likeRepository.CountsByPosts(ctx, ids)
	if err != nil {
		return nil, err
	}
	comments, err := e.commentRepository.CountsByPosts(ctx, hexIDs)
	if err != nil {
		return nil, err
	}

	reactions := map[primitive.ObjectID]models.ReactionType{}
	saved := map[string]bool{}
	if viewer, err := primitive.ObjectIDFromHex(viewerID); err == nil {
		if reactions, err = e.likeRepository.ReactionsByUser(ctx, viewer, ids); err != nil {
			return nil, err
		}
		if saved, err = e.savedPostRepository.GetSavedPostIDs(ctx, viewerID, hexIDs); err != nil {
			return nil, err
		}
	}

	for i, p := range posts {
		views[i] = models.PostView{
			Post:          p,
			AuthorInfo:    authors[authorIDs[i]],
			LikesCount:    likes[p.ID],
			CommentsCount: comments[hexIDs[i]],
			MyReaction:    reactions[p.ID],
			IsSaved:       saved[hexIDs[i]],
		}
	}
	return views, nil
}

func (e postEnricher) enrichOne(ctx context.Context, post *models.Post, viewerID string) (*models.PostView, error) {
	views, err := e.enrich(ctx, []models.Post{*post}, viewerID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postEnricher
	postRepository repositories.PostRepository
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	likeRepo repositories.LikeRepository,
	commentRepo repositories.CommentRepository,
	savedPostRepo repositories.SavedPostRepository,
) *PostHandler {
	return &PostHandler{
		postEnricher: postEnricher{
			userRepository:      userRepo,
			likeRepository:      likeRepo,
			commentRepository:   commentRepo,
			savedPostRepository: savedPostRepo,
		},
		postRepository: postRepo,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, requireAuth, optionalAuth echo.MiddlewareFunc) {
	g.GET("", h.GetPosts, optionalAuth)
	g.POST("", h.CreatePost, requireAuth)
	g.GET("/:id", h.GetPost, optionalAuth)
	g.PUT("/:id", h.UpdatePost, requireAuth)
	g.DELETE("/:id", h.DeletePost, requireAuth)
}

// GetPosts lists posts with pagination, filtering and sorting.
//
// Query parameters: page, limit, tag, author, q and sort (newest, oldest, views, popular).
func (h *PostHandler) GetPosts(c echo.Context) error {
	var q models.PostListQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}
	page := pageFromQuery(c)

	filter := models.PostFilter{
		Tag:   strings.ToLower(strings.TrimSpace(q.Tag)),
		Query: strings.TrimSpace(q.Query),
		Sort:  q.Sort,
	}
	if filter.Sort == "" {
		filter.Sort = models.SortNewest
	}
	if q.Author != "" {
		authorID, err := repositories.ParseID(q.Author)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid author ID")
		}
		filter.Author = authorID
	}

	ctx := c.Request().Context()
	posts, total, err := h.postRepository.ListPosts(ctx, filter, page)
	if err != nil {
		return internalError(err)
	}
	views, err := h.enrich(ctx, posts, getUserIDFromContext(c))
	if err != nil {
		return internalError(err)
	}

	return paginated(c, "posts", views, page, total)
}

// GetPost retrieves a post by ID or slug and counts the view.
func (h *PostHandler) GetPost(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := h.postRepository.ViewPost(ctx, c.Param("id"))
	if err != nil {
		return repoError(err, "post")
	}
	view, err := h.enrichOne(ctx, post, getUserIDFromContext(c))
	if err != nil {
		return internalError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"post": view})
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	claims, err := mustClaims(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	authorID, err := repositories.ParseID(claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	post := &models.Post{
		Title:    title,
		Body:     req.Body,
		Slug:     slug.Make(title),
		ImageURL: req.ImageURL,
		Tags:     normalizeTags(req.Tags),
		Author:   authorID,
	}

	ctx := c.Request().Context()
	if err := h.postRepository.CreatePost(ctx, post); err != nil {
		return repoError(err, "post")
	}
	view, err := h.enrichOne(ctx, post, claims.UserID)
	if err != nil {
		return internalError(err)
	}
	return ok(c, http.StatusCreated, echo.Map{"post": view})
}

// UpdatePost merges the request into an existing post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	claims, err := mustClaims(c)
	if err != nil {
		return err
	}

	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	existingPost, err := h.postRepository.GetPostByID(ctx, c.Param("id"))
	if err != nil {
		return repoError(err, "post")
	}

	// Only the author or an admin may update the post
	if !canModify(claims, existingPost.Author.Hex()) {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to update this post")
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "title cannot be empty")
		}
		if title != existingPost.Title {
			existingPost.Title = title
			existingPost.Slug = slug.Make(title)
		}
	}
	if req.Body != nil {
		existingPost.Body = *req.Body
	}
	if req.ImageURL != nil {
		existingPost.ImageURL = *req.ImageURL
	}
	if req.Tags != nil {
		existingPost.Tags = normalizeTags(req.Tags)
	}

	if err := h.postRepository.UpdatePost(ctx, existingPost); err != nil {
		return repoError(err, "post")
	}
	view, err := h.enrichOne(ctx, existingPost, claims.UserID)
	if err != nil {
		return internalError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"post": view})
}

// DeletePost deletes a post with its reactions, comments and bookmarks
func (h *PostHandler) DeletePost(c echo.Context) error {
	claims, err := mustClaims(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	existingPost, err := h.postRepository.GetPostByID(ctx, c.Param("id"))
	if err != nil {
		return repoError(err, "post")
	}

	// Only the author or an admin may delete the post
	if !canModify(claims, existingPost.Author.Hex()) {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this post")
	}

	postID := existingPost.ID.Hex()
	if err := h.postRepository.DeletePost(ctx, postID); err != nil {
		return repoError(err, "post")
	}
	if err := h.commentRepository.DeleteCommentsByPostID(ctx, postID); err != nil {
		return internalError(err)
	}
	if err := h.savedPostRepository.DeleteByPostID(ctx, postID); err != nil {
		return internalError(err)
	}

	return ok(c, http.StatusOK, echo.Map{"message": "Post deleted"})
}

// normalizeTags lowercases, trims and de-duplicates tags, keeping their order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
