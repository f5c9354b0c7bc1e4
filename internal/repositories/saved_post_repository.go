package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/models"
)

// SavedPostRepository defines the interface for saved post operations
type SavedPostRepository interface {
	SavePost(ctx context.Context, savedPost *models.SavedPost) error
	UnsavePost(ctx context.Context, userID, postID string) error
	GetSavedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
	ListSavedPostIDs(ctx context.Context, userID string, page models.Page) ([]string, int64, error)
	DeleteByPostID(ctx context.Context, postID string) error
	DeleteByUserID(ctx context.Context, userID string) error
}

// PostgresSavedPostRepository implements SavedPostRepository
type PostgresSavedPostRepository struct {
	db *gorm.DB
}

func NewPostgresSavedPostRepository(db *gorm.DB) *PostgresSavedPostRepository {
	return &PostgresSavedPostRepository{db: db}
}

// SavePost bookmarks a post; saving it twice yields ErrDuplicate.
func (r *PostgresSavedPostRepository) SavePost(ctx context.Context, savedPost *models.SavedPost) error {
	return gormErr(r.db.WithContext(ctx).Create(savedPost).Error, "saved post")
}

func (r *PostgresSavedPostRepository) UnsavePost(ctx context.Context, userID, postID string) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.SavedPost{})
	if res.Error != nil {
		return gormErr(res.Error, "saved post")
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("saved post %w", ErrNotFound)
	}
	return nil
}

// GetSavedPostIDs reports which of postIDs the user has saved.
func (r *PostgresSavedPostRepository) GetSavedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(postIDs) == 0 {
		return result, nil
	}
	var saved []models.SavedPost
	err := r.db.WithContext(ctx).Where("user_id = ? AND post_id IN ?", userID, postIDs).Find(&saved).Error
	if err != nil {
		return nil, gormErr(err, "saved posts")
	}
	for _, s := range saved {
		result[s.PostID] = true
	}
	return result, nil
}

// ListSavedPostIDs returns one page of the user's saved post IDs, most recently saved first.
func (r *PostgresSavedPostRepository) ListSavedPostIDs(ctx context.Context, userID string, page models.Page) ([]string, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.SavedPost{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, gormErr(err, "saved posts")
	}

	ids := []string{}
	err := r.db.WithContext(ctx).Model(&models.SavedPost{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Offset(int(page.Skip())).Limit(int(page.Limit())).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, 0, gormErr(err, "saved posts")
	}
	return ids, total, nil
}

func (r *PostgresSavedPostRepository) DeleteByPostID(ctx context.Context, postID string) error {
	return gormErr(r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.SavedPost{}).Error, "saved posts")
}

func (r *PostgresSavedPostRepository) DeleteByUserID(ctx context.Context, userID string) error {
	return gormErr(r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.SavedPost{}).Error, "saved posts")
}
