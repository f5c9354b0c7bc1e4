package handlers

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"strings"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/auth"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/middleware"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/models"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/repositories"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/pkg/mailer"
)

const resetCodeTTL = 15 * time.Minute

const forgotPasswordMessage = "If an account with that email exists, a reset code has been sent"

// IDTokenVerifier verifies Firebase ID tokens. Satisfied by *auth.Client of the Firebase SDK.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	tokens         *auth.TokenManager
	denylist       auth.Denylist
	mailer         mailer.Mailer
	firebaseAuth   IDTokenVerifier
	cookieSecure   bool
	now            func() time.Time
}

// NewAuthHandler creates a new AuthHandler. firebaseAuth may be nil, which disables
// Firebase login.
func NewAuthHandler(
	userRepo repositories.UserRepository,
	tokens *auth.TokenManager,
	denylist auth.Denylist,
	m mailer.Mailer,
	firebaseAuth IDTokenVerifier,
	cookieSecure bool,
) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		tokens:         tokens,
		denylist:       denylist,
		mailer:         m,
		firebaseAuth:   firebaseAuth,
		cookieSecure:   cookieSecure,
		now:            time.Now,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, requireAuth, optionalAuth echo.MiddlewareFunc) {
	g.POST("/signup", h.Signup)
	g.POST("/login", h.Login)
	g.POST("/logout", h.Logout, optionalAuth)
	g.GET("/me", h.Me, requireAuth)
	g.POST("/forgot-password", h.ForgotPassword)
	g.POST("/reset-password", h.ResetPassword)
	g.POST("/firebase-login", h.FirebaseLogin)
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	email := normalizeEmail(req.Email)

	// Check if user with this email already exists
	_, err := h.userRepository.GetUserByEmail(ctx, email)
	if err == nil {
		return echo.NewHTTPError(http.StatusConflict, "User with this email already registered")
	}
	if !repositories.IsNotFound(err) {
		return internalError(err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return internalError(fmt.Errorf("hash password: %w", err))
	}

	user := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Phone:    strings.TrimSpace(req.Phone),
		Password: string(hashedPassword),
		Role:     models.RoleUser,
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return repoError(err, "user")
	}

	return h.startSession(c, http.StatusCreated, user)
}

// Login handles local user authentication with email and password
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByEmail(c.Request().Context(), normalizeEmail(req.Email))
	if err != nil {
		if repositories.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
		}
		return internalError(err)
	}

	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	return h.startSession(c, http.StatusOK, user)
}

// Logout revokes the presented token, if any, and clears the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	if claims := middleware.Claims(c); claims != nil && claims.ID != "" && claims.ExpiresAt != nil {
		if err := h.denylist.Revoke(c.Request().Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			return internalError(fmt.Errorf("revoke token: %w", err))
		}
	}
	auth.ClearTokenCookie(c, h.cookieSecure)
	return ok(c, http.StatusOK, echo.Map{"message": "Logged out"})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	claims, err := mustClaims(c)
	if err != nil {
		return err
	}
	user, err := h.userRepository.GetUserByID(c.Request().Context(), claims.UserID)
	if err != nil {
		return repoError(err, "user")
	}
	return ok(c, http.StatusOK, echo.Map{"user": user})
}

// ForgotPassword mails a reset code. The response is the same whether or not the
// email belongs to an account.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req models.ForgotPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if repositories.IsNotFound(err) {
			return ok(c, http.StatusOK, echo.Map{"message": forgotPasswordMessage})
		}
		return internalError(err)
	}

	code, err := generateResetCode()
	if err != nil {
		return internalError(err)
	}
	if err := h.userRepository.SetResetCode(ctx, user.ID, hashResetCode(code), h.now().Add(resetCodeTTL)); err != nil {
		return internalError(err)
	}
	if err := h.mailer.SendPasswordReset(user.Email, user.Name, code, resetCodeTTL); err != nil {
		log.Printf("failed to send password reset email to %s: %v", user.Email, err)
	}

	return ok(c, http.StatusOK, echo.Map{"message": forgotPasswordMessage})
}

// ResetPassword sets a new password when the emailed code matches and has not expired.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req models.ResetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	invalid := echo.NewHTTPError(http.StatusBadRequest, "Invalid or expired reset code")

	user, err := h.userRepository.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if repositories.IsNotFound(err) {
			return invalid
		}
		return internalError(err)
	}

	if user.ResetPasswordCode == "" || user.ResetPasswordExpires == nil || h.now().After(*user.ResetPasswordExpires) {
		return invalid
	}
	if subtle.ConstantTimeCompare([]byte(hashResetCode(req.Code)), []byte(user.ResetPasswordCode)) != 1 {
		return invalid
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return internalError(fmt.Errorf("hash password: %w", err))
	}
	if err := h.userRepository.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		return repoError(err, "user")
	}

	return ok(c, http.StatusOK, echo.Map{"message": "Password has been reset"})
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FirebaseLogin handles Firebase ID token verification and issues a local JWT
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if h.firebaseAuth == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Firebase login is not configured")
	}

	var req FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	// Verify Firebase ID token
	token, err := h.firebaseAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	email, _ := token.Claims["email"].(string)
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Firebase account has no email address")
	}
	email = normalizeEmail(email)

	user, err := h.userRepository.GetUserByEmail(ctx, email)
	if err != nil {
		if !repositories.IsNotFound(err) {
			return internalError(err)
		}
		// New user, create one
		name, _ := token.Claims["name"].(string)
		if name == "" {
			name = strings.SplitN(email, "@", 2)[0]
		}
		avatar, _ := token.Claims["picture"].(string)
		user = &models.User{Name: name, Email: email, Avatar: avatar, Role: models.RoleUser}
		if err := h.userRepository.CreateUser(ctx, user); err != nil {
			return repoError(err, "user")
		}
	}

	return h.startSession(c, http.StatusOK, user)
}

// startSession issues a token for user, sets the auth cookie and writes {user, token}.
func (h *AuthHandler) startSession(c echo.Context, status int, user *models.User) error {
	token, expiresAt, err := h.tokens.Issue(user)
	if err != nil {
		return internalError(fmt.Errorf("issue token: %w", err))
	}
	auth.SetTokenCookie(c, token, expiresAt, h.cookieSecure)
	return ok(c, status, echo.Map{"user": user, "token": token})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateResetCode returns a random 6-digit code.
func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate reset code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func hashResetCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
