package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/models"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/repositories"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository         repositories.UserRepository
	postRepository         repositories.PostRepository
	commentRepository      repositories.CommentRepository
	notificationRepository repositories.NotificationRepository
	savedPostRepository    repositories.SavedPostRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(
	userRepo repositories.UserRepository,
	postRepo repositories.PostRepository,
	commentRepo repositories.CommentRepository,
	notificationRepo repositories.NotificationRepository,
	savedPostRepo repositories.SavedPostRepository,
) *UserHandler {
	return &UserHandler{
		userRepository:         userRepo,
		postRepository:         postRepo,
		commentRepository:      commentRepo,
		notificationRepository: notificationRepo,
		savedPostRepository:    savedPostRepo,
	}
}

// RegisterUserRoutes registers user profile and administration routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group, requireAuth, optionalAuth, adminOnly echo.MiddlewareFunc) {
	g.GET("", h.SearchUsers, requireAuth)
	g.PUT("/me", h.UpdateProfile, requireAuth)
	g.GET("/:id", h.GetUser, optionalAuth)
	g.DELETE("/:id", h.DeleteUser, requireAuth, adminOnly)
	g.PUT("/:id/role", h.UpdateRole, requireAuth, adminOnly)
}

// SearchUsers lists users whose name or email matches q
func (h *UserHandler) SearchUsers(c echo.Context) error {
	page := pageFromQuery(c)
	users, total, err := h.userRepository.SearchUsers(c.Request().Context(), strings.TrimSpace(c.QueryParam("q")), page)
	if err != nil {
		return internalError(err)
	}
	return paginated(c, "users", toCompact(users), page, total)
}

// GetUser returns a public profile with follower, following and post counts
func (h *UserHandler) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByID(ctx, c.Param("id"))
	if err != nil {
		return repoError(err, "user")
	}

	postsCount, err := h.postRepository.CountPostsByAuthor(ctx, user.ID)
	if err != nil {
		return internalError(err)
	}

	profile := models.UserProfile{
		User:           user,
		FollowersCount: len(user.Followers),
		FollowingCount: len(user.Following),
		PostsCount:     postsCount,
	}
	if viewer, err := primitive.ObjectIDFromHex(getUserIDFromContext(c)); err == nil {
		profile.IsFollowing = user.IsFollowedBy(viewer)
	}

	return ok(c, http.StatusOK, echo.Map{"user": profile})
}

// UpdateProfile merges the request into the authenticated user's profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	claims, err := mustClaims(c)
	if err != nil {
		return err
	}

	var req models.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return repoError(err, "user")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "name cannot be empty")
		}
		user.Name = name
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Education != nil {
		user.Education = *req.Education
	}
	if req.Work != nil {
		user.Work = *req.Work
	}
	if req.Skills != nil {
		user.Skills = req.Skills
	}
	if req.Social != nil {
		user.Social = *req.Social
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}

	if err := h.userRepository.UpdateUser(ctx, user); err != nil {
		return repoError(err, "user")
	}
	return ok(c, http.StatusOK, echo.Map{"user": user})
}

// DeleteUser removes a user account with everything that references it. Admin only.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	claims, err := mustClaims(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if id == claims.UserID {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot delete your own account")
	}

	ctx := c.Request().Context()
	if err := h.userRepository.DeleteUser(ctx, id); err != nil {
		return repoError(err, "user")
	}
	if err := h.commentRepository.DeleteCommentsByUserID(ctx, id); err != nil {
		return internalError(err)
	}
	if err := h.notificationRepository.DeleteByUserID(ctx, id); err != nil {
		return internalError(err)
	}
	if err := h.savedPostRepository.DeleteByUserID(ctx, id); err != nil {
		return internalError(err)
	}

	return ok(c, http.StatusOK, echo.Map{"message": "User deleted"})
}

// UpdateRole changes a user's role. Admin only.
func (h *UserHandler) UpdateRole(c echo.Context) error {
	var req models.UpdateRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userRepository.SetRole(c.Request().Context(), c.Param("id"), req.Role)
	if err != nil {
		return repoError(err, "user")
	}
	return ok(c, http.StatusOK, echo.Map{"user": user})
}
