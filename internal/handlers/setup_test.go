package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/auth"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/middleware"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/models"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/validators"
)

type testEnv struct {
	e             *echo.Echo
	tokens        *auth.TokenManager
	denylist      *auth.MemoryDenylist
	clock         *clock
	users         *fakeUserRepo
	follows       *fakeFollowRepo
	posts         *fakePostRepo
	likes         *fakeLikeRepo
	comments      *fakeCommentRepo
	notifications *fakeNotificationRepo
	saved         *fakeSavedPostRepo
	mailer        *fakeMailer
	images        *fakeImageStore
	firebase      *fakeVerifier
	authHandler   *AuthHandler
}

// newTestEnv wires every handler onto an echo instance the same way the router does,
// backed by in-memory repositories.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	c := newClock()
	env := &testEnv{
		e:             echo.New(),
		tokens:        auth.NewTokenManager("test-secret", time.Hour),
		denylist:      auth.NewMemoryDenylist(),
		clock:         c,
		users:         newFakeUserRepo(c),
		posts:         newFakePostRepo(c),
		likes:         newFakeLikeRepo(),
		comments:      newFakeCommentRepo(c),
		notifications: &fakeNotificationRepo{clock: c},
		saved:         &fakeSavedPostRepo{},
		mailer:        &fakeMailer{},
		images:        &fakeImageStore{},
		firebase:      &fakeVerifier{},
	}
	env.follows = &fakeFollowRepo{users: env.users}

	e := env.e
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = HTTPErrorHandler
	e.GET("/health", Health(nil))

	requireAuth := middleware.JWTAuth(env.tokens, env.denylist, "/login")
	optionalAuth := middleware.OptionalJWTAuth(env.tokens, env.denylist)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	env.authHandler = NewAuthHandler(env.users, env.tokens, env.denylist, env.mailer, env.firebase, false)
	env.authHandler.RegisterAuthRoutes(e.Group("/api/auth"), requireAuth, optionalAuth)

	api := e.Group("/api")
	posts := api.Group("/posts")
	users := api.Group("/users")
	NewPostHandler(env.posts, env.users, env.likes, env.comments, env.saved).RegisterPostRoutes(posts, requireAuth, optionalAuth)
	NewLikeHandler(env.likes, env.posts, env.notifications).RegisterLikeRoutes(posts, requireAuth, optionalAuth)
	NewCommentHandler(env.comments, env.posts, env.users, env.notifications).RegisterCommentRoutes(posts, api.Group("/comments"), requireAuth)
	NewSavedPostHandler(env.saved, env.posts, env.users, env.likes, env.comments).RegisterSavedPostRoutes(posts, users, requireAuth)
	NewUserHandler(env.users, env.posts, env.comments, env.notifications, env.saved).RegisterUserRoutes(users, requireAuth, optionalAuth, adminOnly)
	NewFollowHandler(env.follows, env.users, env.notifications).RegisterFollowRoutes(users, requireAuth)
	NewFeedHandler(env.posts, env.users, env.follows, env.likes, env.comments, env.saved).RegisterFeedRoutes(api, requireAuth)
	NewNotificationHandler(env.notifications, env.users).RegisterNotificationRoutes(api.Group("/notifications", requireAuth))
	NewUploadHandler(env.images, 1<<20).RegisterUploadRoutes(api, requireAuth)
	return env
}

// createUser stores a user whose password is "password123".
func (env *testEnv) createUser(t *testing.T, name, email, role string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{Name: name, Email: email, Password: string(hash), Role: role}
	require.NoError(t, env.users.CreateUser(context.Background(), user))
	return user
}

func (env *testEnv) createPost(t *testing.T, author *models.User, title string, tags ...string) *models.Post {
	t.Helper()
	post := &models.Post{Title: title, Body: "body of " + title, Slug: title, Tags: tags, Author: author.ID}
	require.NoError(t, env.posts.CreatePost(context.Background(), post))
	return post
}

// do sends a JSON request, authenticated as user when user is not nil.
func (env *testEnv) do(t *testing.T, method, path string, body interface{}, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if user != nil {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+env.token(t, user))
	}
	return env.serve(req)
}

func (env *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, _, err := env.tokens.Issue(user)
	require.NoError(t, err)
	return token
}

// envelope is the decoded response body.
type envelope struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data"`
	Meta    *models.PageMeta       `json:"meta"`
	Error   string                 `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

// object returns data[key] as a JSON object.
func object(t *testing.T, env envelope, key string) map[string]interface{} {
	t.Helper()
	v, ok := env.Data[key].(map[string]interface{})
	require.True(t, ok, "data.%s is not an object: %v", key, env.Data[key])
	return v
}

// list returns data[key] as a JSON array of objects.
func list(t *testing.T, env envelope, key string) []map[string]interface{} {
	t.Helper()
	raw, ok := env.Data[key].([]interface{})
	require.True(t, ok, "data.%s is not an array: %v", key, env.Data[key])
	out := make([]map[string]interface{}, len(raw))
	for i, item := range raw {
		out[i] = item.(map[string]interface{})
	}
	return out
}
