package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/models"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/repositories"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository      repositories.CommentRepository
	postRepository         repositories.PostRepository
	userRepository         repositories.UserRepository
	notificationRepository repositories.NotificationRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(
	commentRepo repositories.CommentRepository,
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	notificationRepo repositories.NotificationRepository,
) *CommentHandler {
	return &CommentHandler{
		commentRepository:      commentRepo,
		postRepository:         postRepo,
		userRepository:         userRepo,
		notificationRepository: notificationRepo,
	}
}

// RegisterCommentRoutes registers the comment routes nested under posts and the
// routes addressing a single comment.
func (h *CommentHandler) RegisterCommentRoutes(posts, comments *echo.Group, requireAuth echo.MiddlewareFunc) {
	posts.GET("/:id/comments", h.GetComments)
	posts.POST("/:id/comments", h.CreateComment, requireAuth)
	comments.PUT("/:id", h.UpdateComment, requireAuth)
	comments.DELETE("/:id", h.DeleteComment, requireAuth)
}

// GetComments lists the comments of a post, oldest first
func (h *CommentHandler) GetComments(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := h.postRepository.GetPostByID(ctx, c.Param("id"))
	if err != nil {
		return repoError(err, "post")
	}

	page := pageFromQuery(c)
	comments, total, err := h.commentRepository.GetCommentsByPostID(ctx, post.ID.Hex(), page)
	if err != nil {
		return internalError(err)
	}
	views, err := h.withAuthors(ctx, comments)
	if err != nil {
		return internalError(err)
	}

	return paginated(c, "comments", views, page, total)
}

// CreateComment adds a comment to a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	claims, err := mustClaims(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "content is required")
	}

	ctx := c.Request().Context()
	post, err := h.postRepository.GetPostByID(ctx, c.Param("id"))
	if err != nil {
		return repoError(err, "post")
	}

	comment := &models.Comment{
		PostID:  post.ID.Hex(),
		UserID:  claims.UserID,
		Content: content,
	}
	if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
		return internalError(err)
	}

	notify(ctx, h.notificationRepository, &models.Notification{
		Type:        models.NotificationComment,
		ActorID:     claims.UserID,
		RecipientID: post.Author.Hex(),
		TargetID:    post.ID.Hex(),
		TargetType:  "post",
		Message:     "commented on your post",
	})

	views, err := h.withAuthors(ctx, []models.Comment{*comment})
	if err != nil {
		return internalError(err)
	}
	return ok(c, http.StatusCreated, echo.Map{"comment": views[0]})
}

// UpdateComment edits a comment. Only its author may do so.
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	claims, err := mustClaims(c)
	if err != nil {
		return err
	}
	id, err := parseUintParam(c, "id", "comment")
	if err != nil {
		return err
	}

	var req models.UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "content is required")
	}

	ctx := c.Request().Context()
	comment, err := h.commentRepository.GetCommentByID(ctx, id)
	if err != nil {
		return repoError(err, "comment")
	}
	if comment.UserID != claims.UserID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to update this comment")
	}

	comment.Content = content
	if err := h.commentRepository.UpdateComment(ctx, comment); err != nil {
		return internalError(err)
	}

	views, err := h.withAuthors(ctx, []models.Comment{*comment})
	if err != nil {
		return internalError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"comment": views[0]})
}

// DeleteComment removes a comment. The comment author, the post author and admins may do so.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	claims, err := mustClaims(c)
	if err != nil {
		return err
	}
	id, err := parseUintParam(c, "id", "comment")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	comment, err := h.commentRepository.GetCommentByID(ctx, id)
	if err != nil {
		return repoError(err, "comment")
	}

	if !canModify(claims, comment.UserID) {
		post, err := h.postRepository.GetPostByID(ctx, comment.PostID)
		if err != nil && !repositories.IsNotFound(err) {
			return internalError(err)
		}
		if post == nil || post.Author.Hex() != claims.UserID {
			return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this comment")
		}
	}

	if err := h.commentRepository.DeleteComment(ctx, id); err != nil {
		return repoError(err, "comment")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Comment deleted"})
}

func (h *CommentHandler) withAuthors(ctx context.Context, comments []models.Comment) ([]models.CommentView, error) {
	userIDs := make([]string, len(comments))
	for i, cm := range comments {
		userIDs[i] = cm.UserID
	}
	authors, err := compactUsers(ctx, h.userRepository, userIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.CommentView, len(comments))
	for i, cm := range comments {
		views[i] = models.CommentView{Comment: cm, Author: authors[cm.UserID]}
	}
	return views, nil
}
