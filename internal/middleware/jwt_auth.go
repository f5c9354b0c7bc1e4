package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/auth"
)

// ContextKey is where verified claims are stored on the echo context.
const ContextKey = "user"

var errNoToken = errors.New("no token")

// JWTAuth rejects requests without a valid, unrevoked session token. Browser page
// navigations are redirected to loginPath instead of receiving a 401.
func JWTAuth(tokens *auth.TokenManager, denylist auth.Denylist, loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := authenticate(c, tokens, denylist)
			if err != nil {
				if wantsHTML(c) {
					target := loginPath + "?next=" + url.QueryEscape(c.Request().URL.RequestURI())
					return c.Redirect(http.StatusFound, target)
				}
				return unauthorized(err)
			}
			c.Set(ContextKey, claims)
			return next(c)
		}
	}
}

// OptionalJWTAuth attaches claims when a valid token is present and lets anonymous requests through.
func OptionalJWTAuth(tokens *auth.TokenManager, denylist auth.Denylist) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if claims, err := authenticate(c, tokens, denylist); err == nil {
				c.Set(ContextKey, claims)
			}
			return next(c)
		}
	}
}

// Claims returns the verified claims, or nil for anonymous requests.
func Claims(c echo.Context) *auth.Claims {
	claims, _ := c.Get(ContextKey).(*auth.Claims)
	return claims
}

func authenticate(c echo.Context, tokens *auth.TokenManager, denylist auth.Denylist) (*auth.Claims, error) {
	tokenString, err := extractToken(c)
	if err != nil {
		return nil, err
	}

	claims, err := tokens.Parse(tokenString)
	if err != nil {
		return nil, err
	}

	revoked, err := denylist.IsRevoked(c.Request().Context(), claims.ID)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to check session").SetInternal(err)
	}
	if revoked {
		return nil, auth.ErrInvalidToken
	}
	return claims, nil
}

// extractToken prefers the session cookie and falls back to "Authorization: Bearer <token>".
func extractToken(c echo.Context) (string, error) {
	if cookie, err := c.Cookie(auth.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", errNoToken
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
	}
	return parts[1], nil
}

func unauthorized(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	switch {
	case errors.Is(err, errNoToken):
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, auth.ErrExpiredToken):
		return echo.NewHTTPError(http.StatusUnauthorized, "Session expired")
	default:
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
}

func wantsHTML(c echo.Context) bool {
	req := c.Request()
	return req.Method == http.MethodGet && strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMETextHTML)
}
