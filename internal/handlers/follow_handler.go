package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/models"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/repositories"
)

// FollowHandler handles follow-related HTTP requests
type FollowHandler struct {
	followRepository       repositories.FollowRepository
	userRepository         repositories.UserRepository
	notificationRepository repositories.NotificationRepository
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(
	followRepo repositories.FollowRepository,
	userRepo repositories.UserRepository,
	notifRepo repositories.NotificationRepository,
) *FollowHandler {
	return &FollowHandler{
		followRepository:       followRepo,
		userRepository:         userRepo,
		notificationRepository: notifRepo,
	}
}

// RegisterFollowRoutes registers follow routes on the users group
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/:id/follow", h.ToggleFollow, requireAuth)
	g.GET("/:id/followers", h.GetFollowers)
	g.GET("/:id/following", h.GetFollowing)
}

// ToggleFollow follows the user, or unfollows them when already following
func (h *FollowHandler) ToggleFollow(c echo.Context) error {
	claims, err := mustClaims(c)
	if err != nil {
		return err
	}

	targetID := c.Param("id")
	ctx := c.Request().Context()

	following, err := h.followRepository.ToggleFollow(ctx, claims.UserID, targetID)
	if err != nil {
		if errors.Is(err, repositories.ErrSelfFollow) {
			return echo.NewHTTPError(http.StatusBadRequest, "You cannot follow yourself")
		}
		return repoError(err, "user")
	}

	if following {
		notify(ctx, h.notificationRepository, &models.Notification{
			Type:        models.NotificationFollow,
			ActorID:     claims.UserID,
			RecipientID: targetID,
			TargetID:    claims.UserID,
			TargetType:  "user",
			Message:     "started following you",
		})
	}

	target, err := h.userRepository.GetUserByID(ctx, targetID)
	if err != nil {
		return repoError(err, "user")
	}

	return ok(c, http.StatusOK, echo.Map{
		"following":      following,
		"followersCount": len(target.Followers),
	})
}

// GetFollowers lists the users following :id
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	page := pageFromQuery(c)
	users, total, err := h.followRepository.GetFollowers(c.Request().Context(), c.Param("id"), page)
	if err != nil {
		return repoError(err, "user")
	}
	return paginated(c, "users", toCompact(users), page, total)
}

// GetFollowing lists the users :id follows
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	page := pageFromQuery(c)
	users, total, err := h.followRepository.GetFollowing(c.Request().Context(), c.Param("id"), page)
	if err != nil {
		return repoError(err, "user")
	}
	return paginated(c, "users", toCompact(users), page, total)
}

func toCompact(users []models.User) []models.UserCompact {
	out := make([]models.UserCompact, len(users))
	for i := range users {
		out[i] = users[i].ToCompact()
	}
	return out
}
