package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/auth"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/middleware"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/models"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/repositories"
)

// getUserIDFromContext returns the authenticated user's ID, or "" for anonymous requests.
func getUserIDFromContext(c echo.Context) string {
	if claims := middleware.Claims(c); claims != nil {
		return claims.UserID
	}
	return ""
}

// mustClaims returns the claims of a route behind JWTAuth.
func mustClaims(c echo.Context) (*auth.Claims, error) {
	claims := middleware.Claims(c)
	if claims == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	return claims, nil
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	return c.Validate(req)
}

func pageFromQuery(c echo.Context) models.Page {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return models.NewPage(page, limit)
}

// repoError maps repository errors onto HTTP errors. what names the resource in messages.
func repoError(err error, what string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, capitalize(what)+" not found")
	case errors.Is(err, repositories.ErrInvalidID):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid "+what+" ID")
	case errors.Is(err, repositories.ErrDuplicate):
		return echo.NewHTTPError(http.StatusConflict, capitalize(what)+" already exists")
	default:
		return internalError(err)
	}
}

func internalError(err error) error {
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func ok(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func paginated(c echo.Context, key string, items interface{}, page models.Page, total int64) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{key: items},
		"meta":    models.NewPageMeta(page, total),
	})
}

// canModify reports whether claims may change a resource owned by ownerID.
func canModify(claims *auth.Claims, ownerID string) bool {
	return claims.UserID == ownerID || claims.IsAdmin()
}

// notify stores a notification for the recipient. Self notifications are skipped and
// failures are only logged: they never fail the action that triggered them.
func notify(ctx context.Context, repo repositories.NotificationRepository, n *models.Notification) {
	if repo == nil || n.ActorID == n.RecipientID {
		return
	}
	if err := repo.CreateNotification(ctx, n); err != nil {
		log.Printf("failed to create %s notification for %s: %v", n.Type, n.RecipientID, err)
	}
}

// compactUsers loads the given users keyed by hex ID. Unknown or malformed IDs get a
// placeholder so that content of deleted accounts still renders.
func compactUsers(ctx context.Context, users repositories.UserRepository, hexIDs []string) (map[string]models.UserCompact, error) {
	seen := make(map[string]bool, len(hexIDs))
	ids := make([]primitive.ObjectID, 0, len(hexIDs))
	for _, id := range hexIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if objID, err := primitive.ObjectIDFromHex(id); err == nil {
			ids = append(ids, objID)
		}
	}

	found, err := users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make(map[string]models.UserCompact, len(seen))
	for id := range seen {
		out[id] = models.UserCompact{ID: id, Name: "Deleted user"}
	}
	for i := range found {
		out[found[i].ID.Hex()] = found[i].ToCompact()
	}
	return out, nil
}

func parseUintParam(c echo.Context, name, what string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid %s ID", what))
	}
	return uint(id), nil
}
