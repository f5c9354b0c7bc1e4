package handlers

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/models"
)

func TestCreatePost(t *testing.T) {
	env := newTestEnv(t)
	ada := env.createUser(t, "Ada", "ada@example.com", models.RoleUser)

	rec := env.do(t, http.MethodPost, "/api/posts", echo.Map{
		"title": "  Hello, World!  ",
		"body":  "First post",
		"tags":  []string{"Go", " go ", "Web"},
	}, ada)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	post := object(t, decode(t, rec), "post")
	assert.Equal(t, "Hello, World!", post["title"])
	assert.Equal(t, "hello-world", post["slug"])
	assert.Equal(t, []interface{}{"go", "web"}, post["tags"])
	assert.Equal(t, ada.ID.Hex(), post["author"])
	assert.Equal(t, "Ada", post["author_info"].(map[string]interface{})["name"])
	assert.EqualValues(t, 0, post["likes_count"])
	assert.Equal(t, false, post["is_saved"])
}

func TestCreatePostRequiresAuthAndValidBody(t *testing.T) {
	env := newTestEnv(t)
	ada := env.createUser(t, "Ada", "ada@example.com", models.RoleUser)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/posts", echo.Map{"title": "Hello", "body": "x"}, nil).Code)

	rec := env.do(t, http.MethodPost, "/api/posts", echo.Map{"title": "Hi", "body": "x"}, ada)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec).Error, "title must be at least 3 characters")
}

func TestGetPostsPaginationAndFilters(t *testing.T) {
	env := newTestEnv(t)
	ada := env.createUser(t, "Ada", "ada@example.com", models.RoleUser)
	bob := env.createUser(t, "Bob", "bob@example.com", models.RoleUser)
	for i := 0; i < 3; i++ {
		env.createPost(t, ada, "ada post "+string(rune('a'+i)), "go")
	}
	env.createPost(t, bob, "bob post", "rust")

	rec := env.do(t, http.MethodGet, "/api/posts?page=1&limit=2", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	posts := list(t, body, "posts")
	require.Len(t, posts, 2)
	assert.Equal(t, "bob post", posts[0]["title"], "newest first")
	require.NotNil(t, body.Meta)
	assert.Equal(t, models.PageMeta{
		CurrentPage: 1, TotalPages: 2, TotalItems: 4, ItemsPerPage: 2, HasNextPage: true,
	}, *body.Meta)

	rec = env.do(t, http.MethodGet, "/api/posts?tag=GO&author="+ada.ID.Hex()+"&q=post&sort=oldest", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, list(t, decode(t, rec), "posts"), 3)
	assert.Equal(t, models.PostFilter{Tag: "go", Author: ada.ID, Query: "post", Sort: models.SortOldest}, env.posts.lastFilter)
}

func TestGetPostsRejectsBadQuery(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/posts?sort=random", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "sort must be one of [newest oldest views popular]", decode(t, rec).Error)

	rec = env.do(t, http.MethodGet, "/api/posts?author=xyz", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "author must be a valid id", decode(t, rec).Error)
}

func TestGetPostCountsViews(t *testing.T) {
	env := newTestEnv(t)
	ada := env.createUser(t, "Ada", "ada@example.com", models.RoleUser)
	post := env.createPost(t, ada, "hello-world")

	rec := env.do(t, http.MethodGet, "/api/posts/"+post.ID.Hex(), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, object(t, decode(t, rec), "post")["views"])

	rec = env.do(t, http.MethodGet, "/api/posts/hello-world", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, object(t, decode(t, rec), "post")["views"])

	rec = env.do(t, http.MethodGet, "/api/posts/missing-slug", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Post not found", decode(t, rec).Error)
}

func TestGetPostShowsViewerState(t *testing.T) {
	env := newTestEnv(t)
	ada := env.createUser(t, "Ada", "ada@example.com", models.RoleUser)
	bob := env.createUser(t, "Bob", "bob@example.com", models.RoleUser)
	post := env.createPost(t, ada, "hello")

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/posts/"+post.ID.Hex()+"/reactions", echo.Map{"type": "love"}, bob).Code)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/posts/"+post.ID.Hex()+"/save", nil, bob).Code)

	view := object(t, decode(t, env.do(t, http.MethodGet, "/api/posts/"+post.ID.Hex(), nil, bob)), "post")
	assert.Equal(t, "love", view["my_reaction"])
	assert.Equal(t, true, view["is_saved"])
	assert.EqualValues(t, 1, view["likes_count"])

	view = object(t, decode(t, env.do(t, http.MethodGet, "/api/posts/"+post.ID.Hex(), nil, nil)), "post")
	assert.NotContains(t, view, "my_reaction")
	assert.Equal(t, false, view["is_saved"])
}

func TestUpdatePost(t *testing.T) {
	env := newTestEnv(t)
	ada := env.createUser(t, "Ada", "ada@example.com", models.RoleUser)
	bob := env.createUser(t, "Bob", "bob@example.com", models.RoleUser)
	admin := env.createUser(t, "Root", "root@example.com", models.RoleAdmin)
	post := env.createPost(t, ada, "hello", "go")

	rec := env.do(t, http.MethodPut, "/api/posts/"+post.ID.Hex(), echo.Map{"body": "hacked"}, bob)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "You are not authorized to update this post", decode(t, rec).Error)

	rec = env.do(t, http.MethodPut, "/api/posts/"+post.ID.Hex(), echo.Map{"title": "A New Title"}, ada)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := object(t, decode(t, rec), "post")
	assert.Equal(t, "A New Title", updated["title"])
	assert.Equal(t, "a-new-title", updated["slug"])
	assert.Equal(t, "body of hello", updated["body"], "fields not sent are kept")
	assert.Equal(t, []interface{}{"go"}, updated["tags"])

	rec = env.do(t, http.MethodPut, "/api/posts/"+post.ID.Hex(), echo.Map{"body": "moderated"}, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "moderated", env.posts.posts[post.ID].Body)
}

func TestDeletePostCascades(t *testing.T) {
	env := newTestEnv(t)
	ada := env.createUser(t, "Ada", "ada@example.com", models.RoleUser)
	bob := env.createUser(t, "Bob", "bob@example.com", models.RoleUser)
	post := env.createPost(t, ada, "hello")
	path := "/api/posts/" + post.ID.Hex()

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, path+"/comments", echo.Map{"content": "nice"}, bob).Code)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, path+"/save", nil, bob).Code)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodDelete, path, nil, bob).Code)

	rec := env.do(t, http.MethodDelete, path, nil, ada)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Post deleted", decode(t, rec).Data["message"])
	assert.Empty(t, env.posts.posts)
	assert.Empty(t, env.comments.comments)
	assert.Empty(t, env.saved.saved)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, path, nil, ada).Code)
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"go", "web"}, normalizeTags([]string{" Go", "", "WEB", "go"}))
	assert.Equal(t, []string{}, normalizeTags(nil))
}
