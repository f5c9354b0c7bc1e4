package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/models"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id uint) (*models.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID string, page models.Page) ([]models.Comment, int64, error)
	UpdateComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, id uint) error
	DeleteCommentsByPostID(ctx context.Context, postID string) error
	DeleteCommentsByUserID(ctx context.Context, userID string) error
	CountsByPosts(ctx context.Context, postIDs []string) (map[string]int64, error)
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// CreateComment creates a new comment in PostgreSQL
func (r *PostgresCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return gormErr(r.db.WithContext(ctx).Create(comment).Error, "comment")
}

// GetCommentByID retrieves a comment by ID from PostgreSQL
func (r *PostgresCommentRepository) GetCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, gormErr(err, "comment")
	}
	return &comment, nil
}

// GetCommentsByPostID returns one page of a post's comments, oldest first.
func (r *PostgresCommentRepository) GetCommentsByPostID(ctx context.Context, postID string, page models.Page) ([]models.Comment, int64, error) {
	var total int64
	q := r.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, gormErr(err, "comments")
	}

	comments := []models.Comment{}
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).
		Order("created_at ASC").Order("id ASC").
		Offset(int(page.Skip())).Limit(int(page.Limit())).
		Find(&comments).Error
	if err != nil {
		return nil, 0, gormErr(err, "comments")
	}
	return comments, total, nil
}

// UpdateComment updates an existing comment in PostgreSQL
func (r *PostgresCommentRepository) UpdateComment(ctx context.Context, comment *models.Comment) error {
	return gormErr(r.db.WithContext(ctx).Save(comment).Error, "comment")
}

// DeleteComment deletes a comment by ID from PostgreSQL
func (r *PostgresCommentRepository) DeleteComment(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return gormErr(res.Error, "comment")
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("comment %w", ErrNotFound)
	}
	return nil
}

func (r *PostgresCommentRepository) DeleteCommentsByPostID(ctx context.Context, postID string) error {
	return gormErr(r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Comment{}).Error, "comments")
}

func (r *PostgresCommentRepository) DeleteCommentsByUserID(ctx context.Context, userID string) error {
	return gormErr(r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Comment{}).Error, "comments")
}

// CountsByPosts returns the number of comments of each listed post.
func (r *PostgresCommentRepository) CountsByPosts(ctx context.Context, postIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		PostID string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Select("post_id, COUNT(*) AS count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, gormErr(err, "comments")
	}
	for _, row := range rows {
		counts[row.PostID] = row.Count
	}
	return counts, nil
}
