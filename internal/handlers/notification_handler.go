package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/models"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/repositories"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		userRepository:         userRepo,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("", h.GetNotifications)
	g.GET("/grouped", h.GetGroupedNotifications)
	g.GET("/unread-count", h.GetUnreadCount)
	g.PUT("/:id/read", h.MarkAsRead)
	g.PUT("/read-all", h.MarkAllAsRead)
}

// EnrichedNotification includes actor info
type EnrichedNotification struct {
	models.Notification
	Actor models.UserCompact `json:"actor"`
}

func (h *NotificationHandler) enrichNotifications(ctx context.Context, notifications []models.Notification) ([]EnrichedNotification, error) {
	actorIDs := make([]string, len(notifications))
	for i, n := range notifications {
		actorIDs[i] = n.ActorID
	}
	actors, err := compactUsers(ctx, h.userRepository, actorIDs)
	if err != nil {
		return nil, err
	}

	enriched := make([]EnrichedNotification, len(notifications))
	for i, n := range notifications {
		enriched[i] = EnrichedNotification{Notification: n, Actor: actors[n.ActorID]}
	}
	return enriched, nil
}

// GetNotifications returns paginated notifications, newest first
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	claims, err := mustClaims(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	page := pageFromQuery(c)
	notifications, total, err := h.notificationRepository.GetByRecipientID(ctx, claims.UserID, page)
	if err != nil {
		return internalError(err)
	}
	enriched, err := h.enrichNotifications(ctx, notifications)
	if err != nil {
		return internalError(err)
	}

	return paginated(c, "notifications", enriched, page, total)
}

// GetGroupedNotifications returns notifications bucketed by age
func (h *NotificationHandler) GetGroupedNotifications(c echo.Context) error {
	claims, err := mustClaims(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	grouped, err := h.notificationRepository.GetGrouped(ctx, claims.UserID)
	if err != nil {
		return internalError(err)
	}

	buckets := map[string][]models.Notification{
		"today":     grouped.Today,
		"yesterday": grouped.Yesterday,
		"this_week": grouped.ThisWeek,
		"older":     grouped.Older,
	}
	data := echo.Map{}
	for name, bucket := range buckets {
		enriched, err := h.enrichNotifications(ctx, bucket)
		if err != nil {
			return internalError(err)
		}
		data[name] = enriched
	}
	return ok(c, http.StatusOK, data)
}

// GetUnreadCount returns the number of unread notifications
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	claims, err := mustClaims(c)
	if err != nil {
		return err
	}

	count, err := h.notificationRepository.GetUnreadCount(c.Request().Context(), claims.UserID)
	if err != nil {
		return internalError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"count": count})
}

// MarkAsRead marks one of the user's notifications as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	claims, err := mustClaims(c)
	if err != nil {
		return err
	}
	id, err := parseUintParam(c, "id", "notification")
	if err != nil {
		return err
	}

	if err := h.notificationRepository.MarkAsRead(c.Request().Context(), id, claims.UserID); err != nil {
		return repoError(err, "notification")
	}
	return ok(c, http.StatusOK, echo.Map{"id": id, "is_read": true})
}

// MarkAllAsRead marks every unread notification of the user as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	claims, err := mustClaims(c)
	if err != nil {
		return err
	}

	updated, err := h.notificationRepository.MarkAllAsRead(c.Request().Context(), claims.UserID)
	if err != nil {
		return internalError(err)
	}
	return ok(c, http.StatusOK, echo.Map{"updated": updated})
}
