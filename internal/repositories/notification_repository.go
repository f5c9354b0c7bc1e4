package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/models"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetByRecipientID(ctx context.Context, recipientID string, page models.Page) ([]models.Notification, int64, error)
	GetGrouped(ctx context.Context, recipientID string) (*models.GroupedNotifications, error)
	GetUnreadCount(ctx context.Context, recipientID string) (int64, error)
	MarkAsRead(ctx context.Context, notificationID uint, recipientID string) error
	MarkAllAsRead(ctx context.Context, recipientID string) (int64, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

type postgresNotificationRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db, now: time.Now}
}

func (r *postgresNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	return gormErr(r.db.WithContext(ctx).Create(notification).Error, "notification")
}

func (r *postgresNotificationRepository) GetByRecipientID(ctx context.Context, recipientID string, page models.Page) ([]models.Notification, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Notification{}).Where("recipient_id = ?", recipientID).Count(&total).Error; err != nil {
		return nil, 0, gormErr(err, "notifications")
	}

	notifications := []models.Notification{}
	err := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID).
		Order("created_at DESC").Order("id DESC").
		Offset(int(page.Skip())).Limit(int(page.Limit())).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, gormErr(err, "notifications")
	}
	return notifications, total, nil
}

// olderLimit caps the "older" bucket of the grouped view.
const olderLimit = 50

// GetGrouped buckets the recipient's notifications into today, yesterday, the rest of
// the last week and older ones.
func (r *postgresNotificationRepository) GetGrouped(ctx context.Context, recipientID string) (*models.GroupedNotifications, error) {
	now := r.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	weekStart := todayStart.AddDate(0, 0, -7)

	g := &models.GroupedNotifications{
		Today:     []models.Notification{},
		Yesterday: []models.Notification{},
		ThisWeek:  []models.Notification{},
		Older:     []models.Notification{},
	}
	newest := func() *gorm.DB {
		return r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	}

	if err := newest().Where("recipient_id = ? AND created_at >= ?", recipientID, todayStart).
		Find(&g.Today).Error; err != nil {
		return nil, gormErr(err, "notifications")
	}
	if err := newest().Where("recipient_id = ? AND created_at >= ? AND created_at < ?", recipientID, yesterdayStart, todayStart).
		Find(&g.Yesterday).Error; err != nil {
		return nil, gormErr(err, "notifications")
	}
	if err := newest().Where("recipient_id = ? AND created_at >= ? AND created_at < ?", recipientID, weekStart, yesterdayStart).
		Find(&g.ThisWeek).Error; err != nil {
		return nil, gormErr(err, "notifications")
	}
	if err := newest().Where("recipient_id = ? AND created_at < ?", recipientID, weekStart).
		Limit(olderLimit).Find(&g.Older).Error; err != nil {
		return nil, gormErr(err, "notifications")
	}
	return g, nil
}

func (r *postgresNotificationRepository) GetUnreadCount(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, gormErr(err, "notifications")
}

// MarkAsRead marks one notification read; it only matches notifications owned by recipientID.
func (r *postgresNotificationRepository) MarkAsRead(ctx context.Context, notificationID uint, recipientID string) error {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Update("is_read", true)
	if res.Error != nil {
		return gormErr(res.Error, "notification")
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("notification %w", ErrNotFound)
	}
	return nil
}

func (r *postgresNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	return res.RowsAffected, gormErr(res.Error, "notifications")
}

func (r *postgresNotificationRepository) DeleteByUserID(ctx context.Context, userID string) error {
	err := r.db.WithContext(ctx).
		Where("recipient_id = ? OR actor_id = ?", userID, userID).
		Delete(&models.Notification{}).Error
	return gormErr(err, "notifications")
}
