package handlers

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/models"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/repositories"
)

// In-memory stand-ins for the repositories and external services.

type clock struct{ t time.Time }

func (c *clock) next() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newClock() *clock {
	return &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func pageOf[T any](items []T, page models.Page) []T {
	start := int(page.Skip())
	if start >= len(items) {
		return []T{}
	}
	end := start + page.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

type fakeUserRepo struct {
	users map[primitive.ObjectID]*models.User
	clock *clock
}

func newFakeUserRepo(c *clock) *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]*models.User{}, clock: c}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *models.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return fmt.Errorf("user %w", repositories.ErrDuplicate)
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = r.clock.next()
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) get(id primitive.ObjectID) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %w", repositories.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id string) (*models.User, error) {
	objID, err := repositories.ParseID(id)
	if err != nil {
		return nil, err
	}
	return r.get(objID)
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return r.get(u.ID)
		}
	}
	return nil, fmt.Errorf("user %w", repositories.ErrNotFound)
}

func (r *fakeUserRepo) GetUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	out := []models.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) sorted() []models.User {
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *fakeUserRepo) SearchUsers(_ context.Context, query string, page models.Page) ([]models.User, int64, error) {
	q := strings.ToLower(query)
	var matched []models.User
	for _, u := range r.sorted() {
		if q == "" || strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(u.Email, q) {
			matched = append(matched, u)
		}
	}
	return pageOf(matched, page), int64(len(matched)), nil
}

func (r *fakeUserRepo) UpdateUser(_ context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("user %w", repositories.ErrNotFound)
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) DeleteUser(_ context.Context, id string) error {
	objID, err := repositories.ParseID(id)
	if err != nil {
		return err
	}
	if _, ok := r.users[objID]; !ok {
		return fmt.Errorf("user %w", repositories.ErrNotFound)
	}
	delete(r.users, objID)
	for _, u := range r.users {
		u.Followers = without(u.Followers, objID)
		u.Following = without(u.Following, objID)
	}
	return nil
}

func (r *fakeUserRepo) SetResetCode(_ context.Context, id primitive.ObjectID, codeHash string, expires time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %w", repositories.ErrNotFound)
	}
	u.ResetPasswordCode = codeHash
	u.ResetPasswordExpires = &expires
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id primitive.ObjectID, passwordHash string) error {
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %w", repositories.ErrNotFound)
	}
	u.Password = passwordHash
	u.ResetPasswordCode = ""
	u.ResetPasswordExpires = nil
	return nil
}

func (r *fakeUserRepo) SetRole(_ context.Context, id string, role string) (*models.User, error) {
	objID, err := repositories.ParseID(id)
	if err != nil {
		return nil, err
	}
	u, ok := r.users[objID]
	if !ok {
		return nil, fmt.Errorf("user %w", repositories.ErrNotFound)
	}
	u.Role = role
	return r.get(objID)
}

func without(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

func contains(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

type fakeFollowRepo struct {
	users *fakeUserRepo
}

func (r *fakeFollowRepo) ToggleFollow(_ context.Context, followerID, targetID string) (bool, error) {
	follower, err := repositories.ParseID(followerID)
	if err != nil {
		return false, err
	}
	target, err := repositories.ParseID(targetID)
	if err != nil {
		return false, err
	}
	if follower == target {
		return false, repositories.ErrSelfFollow
	}
	f, ok1 := r.users.users[follower]
	t, ok2 := r.users.users[target]
	if !ok1 || !ok2 {
		return false, fmt.Errorf("user %w", repositories.ErrNotFound)
	}
	if contains(f.Following, target) {
		f.Following = without(f.Following, target)
		t.Followers = without(t.Followers, follower)
		return false, nil
	}
	f.Following = append(f.Following, target)
	t.Followers = append(t.Followers, follower)
	return true, nil
}

func (r *fakeFollowRepo) IsFollowing(_ context.Context, followerID, targetID string) (bool, error) {
	f, err := r.users.GetUserByID(context.Background(), followerID)
	if err != nil {
		return false, err
	}
	target, err := repositories.ParseID(targetID)
	if err != nil {
		return false, err
	}
	return contains(f.Following, target), nil
}

func (r *fakeFollowRepo) list(userID string, pick func(*models.User) []primitive.ObjectID, page models.Page) ([]models.User, int64, error) {
	u, err := r.users.GetUserByID(context.Background(), userID)
	if err != nil {
		return nil, 0, err
	}
	users, _ := r.users.GetUsersByIDs(context.Background(), pick(u))
	return pageOf(users, page), int64(len(pick(u))), nil
}

func (r *fakeFollowRepo) GetFollowers(_ context.Context, userID string, page models.Page) ([]models.User, int64, error) {
	return r.list(userID, func(u *models.User) []primitive.ObjectID { return u.Followers }, page)
}

func (r *fakeFollowRepo) GetFollowing(_ context.Context, userID string, page models.Page) ([]models.User, int64, error) {
	return r.list(userID, func(u *models.User) []primitive.ObjectID { return u.Following }, page)
}

func (r *fakeFollowRepo) GetFollowingIDs(_ context.Context, userID string) ([]primitive.ObjectID, error) {
	u, err := r.users.GetUserByID(context.Background(), userID)
	if err != nil {
		return nil, err
	}
	return append([]primitive.ObjectID{}, u.Following...), nil
}

type fakePostRepo struct {
	posts      map[primitive.ObjectID]*models.Post
	clock      *clock
	lastFilter models.PostFilter
}

func newFakePostRepo(c *clock) *fakePostRepo {
	return &fakePostRepo{posts: map[primitive.ObjectID]*models.Post{}, clock: c}
}

func (r *fakePostRepo) CreatePost(_ context.Context, post *models.Post) error {
	for _, p := range r.posts {
		if p.Slug == post.Slug {
			post.Slug += "-abc123"
		}
	}
	post.ID = primitive.NewObjectID()
	post.CreatedAt = r.clock.next()
	post.UpdatedAt = post.CreatedAt
	stored := *post
	r.posts[post.ID] = &stored
	return nil
}

func (r *fakePostRepo) get(id primitive.ObjectID) (*models.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %w", repositories.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (r *fakePostRepo) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	objID, err := repositories.ParseID(id)
	if err != nil {
		return nil, err
	}
	return r.get(objID)
}

func (r *fakePostRepo) GetPostBySlug(_ context.Context, s string) (*models.Post, error) {
	for _, p := range r.posts {
		if p.Slug == s {
			return r.get(p.ID)
		}
	}
	return nil, fmt.Errorf("post %w", repositories.ErrNotFound)
}

func (r *fakePostRepo) GetPostsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	out := []models.Post{}
	for _, id := range ids {
		if p, ok := r.posts[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePostRepo) ViewPost(ctx context.Context, idOrSlug string) (*models.Post, error) {
	post, err := r.GetPostBySlug(ctx, idOrSlug)
	if objID, perr := primitive.ObjectIDFromHex(idOrSlug); perr == nil {
		post, err = r.get(objID)
	}
	if err != nil {
		return nil, err
	}
	r.posts[post.ID].Views++
	return r.get(post.ID)
}

func (r *fakePostRepo) ListPosts(_ context.Context, filter models.PostFilter, page models.Page) ([]models.Post, int64, error) {
	r.lastFilter = filter
	var matched []models.Post
	for _, p := range r.posts {
		if filter.Tag != "" && !containsString(p.Tags, filter.Tag) {
			continue
		}
		if !filter.Author.IsZero() && p.Author != filter.Author {
			continue
		}
		if filter.Author.IsZero() && filter.Authors != nil && !contains(filter.Authors, p.Author) {
			continue
		}
		matched = append(matched, *p)
	}
	sort.Slice(matched, func(i, j int) bool {
		if filter.Sort == models.SortOldest {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return pageOf(matched, page), int64(len(matched)), nil
}

func (r *fakePostRepo) UpdatePost(_ context.Context, post *models.Post) error {
	if _, ok := r.posts[post.ID]; !ok {
		return fmt.Errorf("post %w", repositories.ErrNotFound)
	}
	stored := *post
	r.posts[post.ID] = &stored
	return nil
}

func (r *fakePostRepo) DeletePost(_ context.Context, id string) error {
	objID, err := repositories.ParseID(id)
	if err != nil {
		return err
	}
	if _, ok := r.posts[objID]; !ok {
		return fmt.Errorf("post %w", repositories.ErrNotFound)
	}
	delete(r.posts, objID)
	return nil
}

func (r *fakePostRepo) CountPostsByAuthor(_ context.Context, authorID primitive.ObjectID) (int64, error) {
	var n int64
	for _, p := range r.posts {
		if p.Author == authorID {
			n++
		}
	}
	return n, nil
}

func containsString(items []string, s string) bool {
	for _, x := range items {
		if x == s {
			return true
		}
	}
	return false
}

type likeKey struct{ post, user primitive.ObjectID }

type fakeLikeRepo struct {
	reactions map[likeKey]models.ReactionType
}

func newFakeLikeRepo() *fakeLikeRepo {
	return &fakeLikeRepo{reactions: map[likeKey]models.ReactionType{}}
}

func (r *fakeLikeRepo) React(_ context.Context, postID, userID primitive.ObjectID, t models.ReactionType) (models.ReactionType, bool, error) {
	k := likeKey{postID, userID}
	current, exists := r.reactions[k]
	if current == t {
		delete(r.reactions, k)
		return "", false, nil
	}
	r.reactions[k] = t
	return t, !exists, nil
}

func (r *fakeLikeRepo) GetReaction(_ context.Context, postID, userID primitive.ObjectID) (models.ReactionType, error) {
	return r.reactions[likeKey{postID, userID}], nil
}

func (r *fakeLikeRepo) DeleteReaction(_ context.Context, postID, userID primitive.ObjectID) error {
	k := likeKey{postID, userID}
	if _, ok := r.reactions[k]; !ok {
		return fmt.Errorf("reaction %w", repositories.ErrNotFound)
	}
	delete(r.reactions, k)
	return nil
}

func (r *fakeLikeRepo) Summary(_ context.Context, postID primitive.ObjectID) (map[models.ReactionType]int64, int64, error) {
	counts := map[models.ReactionType]int64{}
	var total int64
	for k, t := range r.reactions {
		if k.post == postID {
			counts[t]++
			total++
		}
	}
	return counts, total, nil
}

func (r *fakeLikeRepo) CountsByPosts(_ context.Context, postIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	counts := map[primitive.ObjectID]int64{}
	for k := range r.reactions {
		if contains(postIDs, k.post) {
			counts[k.post]++
		}
	}
	return counts, nil
}

func (r *fakeLikeRepo) ReactionsByUser(_ context.Context, userID primitive.ObjectID, postIDs []primitive.ObjectID) (map[primitive.ObjectID]models.ReactionType, error) {
	out := map[primitive.ObjectID]models.ReactionType{}
	for k, t := range r.reactions {
		if k.user == userID && contains(postIDs, k.post) {
			out[k.post] = t
		}
	}
	return out, nil
}

type fakeCommentRepo struct {
	comments map[uint]*models.Comment
	nextID   uint
	clock    *clock
}

func newFakeCommentRepo(c *clock) *fakeCommentRepo {
	return &fakeCommentRepo{comments: map[uint]*models.Comment{}, clock: c}
}

func (r *fakeCommentRepo) CreateComment(_ context.Context, comment *models.Comment) error {
	r.nextID++
	comment.ID = r.nextID
	comment.CreatedAt = r.clock.next()
	stored := *comment
	r.comments[comment.ID] = &stored
	return nil
}

func (r *fakeCommentRepo) GetCommentByID(_ context.Context, id uint) (*models.Comment, error) {
	c, ok := r.comments[id]
	if !ok {
		return nil, fmt.Errorf("comment %w", repositories.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCommentRepo) GetCommentsByPostID(_ context.Context, postID string, page models.Page) ([]models.Comment, int64, error) {
	var matched []models.Comment
	for _, c := range r.comments {
		if c.PostID == postID {
			matched = append(matched, *c)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return pageOf(matched, page), int64(len(matched)), nil
}

func (r *fakeCommentRepo) UpdateComment(_ context.Context, comment *models.Comment) error {
	stored := *comment
	r.comments[comment.ID] = &stored
	return nil
}

func (r *fakeCommentRepo) DeleteComment(_ context.Context, id uint) error {
	if _, ok := r.comments[id]; !ok {
		return fmt.Errorf("comment %w", repositories.ErrNotFound)
	}
	delete(r.comments, id)
	return nil
}

func (r *fakeCommentRepo) deleteWhere(match func(*models.Comment) bool) {
	for id, c := range r.comments {
		if match(c) {
			delete(r.comments, id)
		}
	}
}

func (r *fakeCommentRepo) DeleteCommentsByPostID(_ context.Context, postID string) error {
	r.deleteWhere(func(c *models.Comment) bool { return c.PostID == postID })
	return nil
}

func (r *fakeCommentRepo) DeleteCommentsByUserID(_ context.Context, userID string) error {
	r.deleteWhere(func(c *models.Comment) bool { return c.UserID == userID })
	return nil
}

func (r *fakeCommentRepo) CountsByPosts(_ context.Context, postIDs []string) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, c := range r.comments {
		if containsString(postIDs, c.PostID) {
			counts[c.PostID]++
		}
	}
	return counts, nil
}

type fakeNotificationRepo struct {
	items  []models.Notification
	nextID uint
	clock  *clock
}

func (r *fakeNotificationRepo) CreateNotification(_ context.Context, n *models.Notification) error {
	r.nextID++
	n.ID = r.nextID
	n.CreatedAt = r.clock.next()
	r.items = append(r.items, *n)
	return nil
}

func (r *fakeNotificationRepo) forRecipient(id string) []models.Notification {
	var out []models.Notification
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].RecipientID == id {
			out = append(out, r.items[i])
		}
	}
	return out
}

func (r *fakeNotificationRepo) GetByRecipientID(_ context.Context, recipientID string, page models.Page) ([]models.Notification, int64, error) {
	all := r.forRecipient(recipientID)
	return pageOf(all, page), int64(len(all)), nil
}

func (r *fakeNotificationRepo) GetGrouped(_ context.Context, recipientID string) (*models.GroupedNotifications, error) {
	return &models.GroupedNotifications{
		Today:     r.forRecipient(recipientID),
		Yesterday: []models.Notification{},
		ThisWeek:  []models.Notification{},
		Older:     []models.Notification{},
	}, nil
}

func (r *fakeNotificationRepo) GetUnreadCount(_ context.Context, recipientID string) (int64, error) {
	var n int64
	for _, item := range r.items {
		if item.RecipientID == recipientID && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) MarkAsRead(_ context.Context, id uint, recipientID string) error {
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].RecipientID == recipientID {
			r.items[i].IsRead = true
			return nil
		}
	}
	return fmt.Errorf("notification %w", repositories.ErrNotFound)
}

func (r *fakeNotificationRepo) MarkAllAsRead(_ context.Context, recipientID string) (int64, error) {
	var n int64
	for i := range r.items {
		if r.items[i].RecipientID == recipientID && !r.items[i].IsRead {
			r.items[i].IsRead = true
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) DeleteByUserID(_ context.Context, userID string) error {
	kept := r.items[:0]
	for _, item := range r.items {
		if item.RecipientID != userID && item.ActorID != userID {
			kept = append(kept, item)
		}
	}
	r.items = kept
	return nil
}

type fakeSavedPostRepo struct {
	saved []models.SavedPost
}

func (r *fakeSavedPostRepo) SavePost(_ context.Context, s *models.SavedPost) error {
	for _, x := range r.saved {
		if x.UserID == s.UserID && x.PostID == s.PostID {
			return fmt.Errorf("saved post %w", repositories.ErrDuplicate)
		}
	}
	s.ID = uint(len(r.saved) + 1)
	r.saved = append(r.saved, *s)
	return nil
}

func (r *fakeSavedPostRepo) UnsavePost(_ context.Context, userID, postID string) error {
	for i, x := range r.saved {
		if x.UserID == userID && x.PostID == postID {
			r.saved = append(r.saved[:i], r.saved[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("saved post %w", repositories.ErrNotFound)
}

func (r *fakeSavedPostRepo) GetSavedPostIDs(_ context.Context, userID string, postIDs []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, x := range r.saved {
		if x.UserID == userID && containsString(postIDs, x.PostID) {
			out[x.PostID] = true
		}
	}
	return out, nil
}

func (r *fakeSavedPostRepo) ListSavedPostIDs(_ context.Context, userID string, page models.Page) ([]string, int64, error) {
	var ids []string
	for i := len(r.saved) - 1; i >= 0; i-- {
		if r.saved[i].UserID == userID {
			ids = append(ids, r.saved[i].PostID)
		}
	}
	return pageOf(ids, page), int64(len(ids)), nil
}

func (r *fakeSavedPostRepo) deleteWhere(match func(models.SavedPost) bool) {
	kept := r.saved[:0]
	for _, x := range r.saved {
		if !match(x) {
			kept = append(kept, x)
		}
	}
	r.saved = kept
}

func (r *fakeSavedPostRepo) DeleteByPostID(_ context.Context, postID string) error {
	r.deleteWhere(func(x models.SavedPost) bool { return x.PostID == postID })
	return nil
}

func (r *fakeSavedPostRepo) DeleteByUserID(_ context.Context, userID string) error {
	r.deleteWhere(func(x models.SavedPost) bool { return x.UserID == userID })
	return nil
}

type sentMail struct {
	to, name, code string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendPasswordReset(to, name, code string, _ time.Duration) error {
	m.sent = append(m.sent, sentMail{to: to, name: name, code: code})
	return m.err
}

type fakeImageStore struct {
	names []string
	types []string
	err   error
}

func (s *fakeImageStore) Put(_ context.Context, name string, r io.Reader, _ int64, contentType string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	s.names = append(s.names, name)
	s.types = append(s.types, contentType)
	return "https://images.test/" + name, nil
}

type fakeVerifier struct {
	claims map[string]interface{}
	err    error
}

func (v *fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*fbauth.Token, error) {
	if v.err != nil {
		return nil, v.err
	}
	return &fbauth.Token{UID: idToken, Claims: v.claims}, nil
}
